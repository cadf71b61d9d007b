package storage

// Driver identifiers understood by the disk resolver.
const (
	DriverLocal  = "local"
	DriverPublic = "public"
	DriverS3     = "s3"
	DriverR2     = "r2"
	DriverGCS    = "gcs"
	DriverAzure  = "azure"
)

// Drivers lists every supported driver.
var Drivers = []string{DriverLocal, DriverPublic, DriverS3, DriverR2, DriverGCS, DriverAzure}

// Config captures the connection details of one disk. Credential fields are
// plaintext here; they are sealed only at rest in settings.
type Config struct {
	Driver     string `json:"driver"`
	Root       string `json:"root,omitempty"`
	URL        string `json:"url,omitempty"`
	Bucket     string `json:"bucket,omitempty"`
	Region     string `json:"region,omitempty"`
	Endpoint   string `json:"endpoint,omitempty"`
	Account    string `json:"account,omitempty"`
	AccessKey  string `json:"access_key,omitempty"`
	SecretKey  string `json:"secret_key,omitempty"`
	Visibility string `json:"visibility,omitempty"`
}

// Remote reports whether the disk lives outside the local filesystem.
func (c Config) Remote() bool {
	return c.Driver != DriverLocal && c.Driver != DriverPublic
}

// Public reports whether files on the disk are served without signing.
func (c Config) Public() bool {
	if c.Visibility != "" {
		return c.Visibility == "public"
	}
	return c.Driver == DriverPublic
}

// Capabilities documents optional behaviours of a disk.
type Capabilities struct {
	PublicURLs  bool
	Credentials bool
	Remote      bool
}

// CapabilitiesOf derives capabilities from a config.
func CapabilitiesOf(cfg Config) Capabilities {
	return Capabilities{
		PublicURLs:  cfg.Public(),
		Credentials: cfg.AccessKey != "" || cfg.SecretKey != "",
		Remote:      cfg.Remote(),
	}
}
