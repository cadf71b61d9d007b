package settings

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/goliatone/go-portal/internal/validation"
)

// Group names a settings bucket edited from one admin screen.
type Group string

const (
	GroupSite       Group = "site"
	GroupMail       Group = "mail"
	GroupStorage    Group = "storage"
	GroupHomepage   Group = "homepage"
	GroupFooter     Group = "footer"
	GroupAddresses  Group = "addresses"
	GroupMinister   Group = "minister"
	GroupAppearance Group = "appearance"
)

// ErrUnknownGroup is returned for group names missing from the registry.
var ErrUnknownGroup = errors.New("settings: unknown group")

// Disks accepted by the storage group.
var Disks = []string{"local", "public", "s3", "r2", "gcs", "azure"}

// Definition describes one group: its schema, the dotted paths holding
// credentials and the values used before anything is saved. A "*" path
// segment matches every key of an object or every element of an array.
type Definition struct {
	Group    Group
	Schema   *validation.Schema
	Secrets  []string
	Defaults map[string]any
}

// Registry holds the known group definitions.
type Registry struct {
	order       []Group
	definitions map[Group]Definition
}

// NewRegistry builds a registry from definitions, keeping their order.
func NewRegistry(definitions ...Definition) *Registry {
	r := &Registry{definitions: make(map[Group]Definition, len(definitions))}
	for _, def := range definitions {
		if _, exists := r.definitions[def.Group]; !exists {
			r.order = append(r.order, def.Group)
		}
		r.definitions[def.Group] = def
	}
	return r
}

// Lookup returns the definition for group.
func (r *Registry) Lookup(group Group) (Definition, error) {
	def, ok := r.definitions[normalizeGroup(group)]
	if !ok {
		return Definition{}, fmt.Errorf("%w: %s", ErrUnknownGroup, group)
	}
	return def, nil
}

// Groups lists the registered groups in registration order.
func (r *Registry) Groups() []Group {
	return slices.Clone(r.order)
}

func normalizeGroup(group Group) Group {
	return Group(strings.ToLower(strings.TrimSpace(string(group))))
}

func labelsSchema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"ms": map[string]any{"type": "string"},
			"en": map[string]any{"type": "string"},
		},
		"additionalProperties": false,
	}
}

func stringSchema() map[string]any {
	return map[string]any{"type": "string"}
}

func object(required []any, properties map[string]any) map[string]any {
	schema := map[string]any{
		"type":                 "object",
		"properties":           properties,
		"additionalProperties": false,
	}
	if len(required) > 0 {
		schema["required"] = required
	}
	return schema
}

func diskSchema() map[string]any {
	return object([]any{"driver"}, map[string]any{
		"driver":     map[string]any{"type": "string", "enum": toAny(Disks)},
		"root":       stringSchema(),
		"url":        stringSchema(),
		"bucket":     stringSchema(),
		"region":     stringSchema(),
		"endpoint":   stringSchema(),
		"account":    stringSchema(),
		"access_key": stringSchema(),
		"secret_key": stringSchema(),
		"visibility": map[string]any{"type": "string", "enum": []any{"public", "private"}},
	})
}

// DefaultRegistry declares the settings groups of the ministry portal.
func DefaultRegistry() *Registry {
	return NewRegistry(
		Definition{
			Group: GroupSite,
			Schema: validation.MustCompile(object([]any{"name"}, map[string]any{
				"name":           labelsSchema(),
				"tagline":        labelsSchema(),
				"contact_email":  stringSchema(),
				"default_locale": map[string]any{"type": "string", "enum": []any{"ms", "en"}},
			})),
			Defaults: map[string]any{"default_locale": "ms"},
		},
		Definition{
			Group: GroupMail,
			Schema: validation.MustCompile(object([]any{"host", "port", "from_address"}, map[string]any{
				"host":         map[string]any{"type": "string", "minLength": 1},
				"port":         map[string]any{"type": "integer", "minimum": 1, "maximum": 65535},
				"username":     stringSchema(),
				"password":     stringSchema(),
				"encryption":   map[string]any{"type": "string", "enum": []any{"none", "ssl", "tls"}},
				"from_address": map[string]any{"type": "string", "minLength": 3},
				"from_name":    stringSchema(),
			})),
			Secrets:  []string{"password"},
			Defaults: map[string]any{"port": 587, "encryption": "tls"},
		},
		Definition{
			Group: GroupStorage,
			Schema: validation.MustCompile(object([]any{"default_disk"}, map[string]any{
				"default_disk": map[string]any{"type": "string", "enum": toAny(Disks)},
				"disks": map[string]any{
					"type":                 "object",
					"additionalProperties": diskSchema(),
				},
			})),
			Secrets:  []string{"disks.*.access_key", "disks.*.secret_key"},
			Defaults: map[string]any{"default_disk": "public"},
		},
		Definition{
			Group: GroupHomepage,
			Schema: validation.MustCompile(object(nil, map[string]any{
				"hero_title":       labelsSchema(),
				"hero_subtitle":    labelsSchema(),
				"featured_limit":   map[string]any{"type": "integer", "minimum": 0, "maximum": 24},
				"show_minister":    map[string]any{"type": "boolean"},
				"show_broadcasts":  map[string]any{"type": "boolean"},
				"show_policies":    map[string]any{"type": "boolean"},
				"banner_image_url": stringSchema(),
			})),
			Defaults: map[string]any{"featured_limit": 6, "show_minister": true, "show_broadcasts": true},
		},
		Definition{
			Group: GroupFooter,
			Schema: validation.MustCompile(object(nil, map[string]any{
				"copyright": labelsSchema(),
				"social": map[string]any{
					"type":                 "object",
					"additionalProperties": map[string]any{"type": "string"},
				},
				"show_visitor_count": map[string]any{"type": "boolean"},
			})),
		},
		Definition{
			Group: GroupAddresses,
			Schema: validation.MustCompile(object(nil, map[string]any{
				"entries": map[string]any{
					"type": "array",
					"items": object([]any{"label", "line1"}, map[string]any{
						"label":    labelsSchema(),
						"line1":    stringSchema(),
						"line2":    stringSchema(),
						"postcode": stringSchema(),
						"city":     stringSchema(),
						"state":    stringSchema(),
						"phone":    stringSchema(),
						"fax":      stringSchema(),
						"email":    stringSchema(),
						"primary":  map[string]any{"type": "boolean"},
					}),
				},
			})),
			Defaults: map[string]any{"entries": []any{}},
		},
		Definition{
			Group: GroupMinister,
			Schema: validation.MustCompile(object([]any{"name"}, map[string]any{
				"name":      map[string]any{"type": "string", "minLength": 1},
				"title":     labelsSchema(),
				"message":   labelsSchema(),
				"photo_url": stringSchema(),
			})),
		},
		Definition{
			Group: GroupAppearance,
			Schema: validation.MustCompile(object([]any{"theme"}, map[string]any{
				"theme":         map[string]any{"type": "string", "minLength": 1},
				"variant":       stringSchema(),
				"primary_color": map[string]any{"type": "string", "pattern": "^#[0-9a-fA-F]{6}$"},
				"logo_url":      stringSchema(),
			})),
			Defaults: map[string]any{"theme": "default"},
		},
	)
}

func toAny(values []string) []any {
	out := make([]any, len(values))
	for i, v := range values {
		out[i] = v
	}
	return out
}
