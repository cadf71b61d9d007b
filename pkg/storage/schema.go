package storage

// Profile is a named disk published by the resolver so other components can
// look disks up without reading settings.
type Profile struct {
	Name        string            `json:"name"`
	Description string            `json:"description,omitempty"`
	Config      Config            `json:"config"`
	Labels      map[string]string `json:"labels,omitempty"`
	Default     bool              `json:"default,omitempty"`
}

// ConfigJSONSchema documents the shape of a disk configuration.
const ConfigJSONSchema = `
{
  "type": "object",
  "required": ["driver"],
  "properties": {
    "driver": {"type": "string", "enum": ["local", "public", "s3", "r2", "gcs", "azure"]},
    "root": {"type": "string"},
    "url": {"type": "string"},
    "bucket": {"type": "string"},
    "region": {"type": "string"},
    "endpoint": {"type": "string"},
    "account": {"type": "string"},
    "access_key": {"type": "string"},
    "secret_key": {"type": "string"},
    "visibility": {"type": "string", "enum": ["public", "private"]}
  },
  "additionalProperties": false
}
`

// ProfileJSONSchema describes a published disk profile.
const ProfileJSONSchema = `
{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "title": "StorageProfile",
  "type": "object",
  "required": ["name", "config"],
  "properties": {
    "name": {
      "type": "string",
      "pattern": "^[a-z0-9_-]+$"
    },
    "description": {"type": "string"},
    "config": ` + ConfigJSONSchema + `,
    "labels": {
      "type": "object",
      "additionalProperties": {"type": "string"}
    },
    "default": {"type": "boolean"}
  },
  "additionalProperties": false
}
`
