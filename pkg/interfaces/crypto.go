package interfaces

// Encrypter seals and opens credential values persisted with settings.
type Encrypter interface {
	Encrypt(plaintext string) (string, error)
	Decrypt(ciphertext string) (string, error)
}
