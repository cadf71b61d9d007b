package site

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/goliatone/go-portal/internal/i18n"
	"github.com/goliatone/go-portal/internal/logging"
	"github.com/goliatone/go-portal/internal/menus"
	"github.com/goliatone/go-portal/internal/settings"
	"github.com/goliatone/go-portal/internal/themes"
	"github.com/goliatone/go-portal/pkg/interfaces"
)

// Navigator renders a named menu for a viewer.
type Navigator interface {
	ResolveNavigation(ctx context.Context, req menus.NavigationRequest) ([]menus.NavigationNode, error)
}

// SettingsReader loads a decrypted settings group.
type SettingsReader interface {
	Get(ctx context.Context, group settings.Group) (settings.Values, error)
}

// Request describes one public page view.
type Request struct {
	Locale         string
	AcceptLanguage string
	Roles          []string
}

// Context carries everything the public layout renders around page content.
type Context struct {
	Locale    string                 `json:"locale"`
	Languages []Language             `json:"languages"`
	Name      string                 `json:"name"`
	Tagline   string                 `json:"tagline,omitempty"`
	Theme     ThemeView              `json:"theme"`
	Header    []menus.NavigationNode `json:"header"`
	Footer    Footer                 `json:"footer"`
	Addresses []Address              `json:"addresses"`
	Minister  *Minister              `json:"minister,omitempty"`
}

// Language is a locale switcher entry.
type Language struct {
	Code   string `json:"code"`
	Label  string `json:"label"`
	Active bool   `json:"active"`
}

// ThemeView is the active theme as rendered by the layout.
type ThemeView struct {
	Code         string   `json:"code"`
	Name         string   `json:"name"`
	Variant      string   `json:"variant,omitempty"`
	PrimaryColor string   `json:"primary_color,omitempty"`
	LogoURL      string   `json:"logo_url,omitempty"`
	Styles       []string `json:"styles,omitempty"`
	Scripts      []string `json:"scripts,omitempty"`
}

// Footer groups the footer menu with footer settings.
type Footer struct {
	Links     []menus.NavigationNode `json:"links"`
	Copyright string                 `json:"copyright,omitempty"`
	Social    map[string]string      `json:"social,omitempty"`
}

// Address is an office address in the viewer's locale.
type Address struct {
	Label   string   `json:"label"`
	Lines   []string `json:"lines"`
	Phone   string   `json:"phone,omitempty"`
	Fax     string   `json:"fax,omitempty"`
	Email   string   `json:"email,omitempty"`
	Primary bool     `json:"primary,omitempty"`
}

// Minister is the minister profile block.
type Minister struct {
	Name     string `json:"name"`
	Title    string `json:"title,omitempty"`
	Message  string `json:"message,omitempty"`
	PhotoURL string `json:"photo_url,omitempty"`
}

// Option configures the builder.
type Option func(*Builder)

// WithMenus overrides the header and footer menu names.
func WithMenus(header, footer string) Option {
	return func(b *Builder) {
		if header = strings.TrimSpace(header); header != "" {
			b.headerMenu = header
		}
		if footer = strings.TrimSpace(footer); footer != "" {
			b.footerMenu = footer
		}
	}
}

// WithAssetPrefix sets the URL prefix of theme assets.
func WithAssetPrefix(prefix string) Option {
	return func(b *Builder) {
		b.assetPrefix = prefix
	}
}

// WithLogger sets the module logger.
func WithLogger(logger interfaces.Logger) Option {
	return func(b *Builder) {
		if logger != nil {
			b.logger = logger
		}
	}
}

// Builder assembles the public site context.
type Builder struct {
	navigator   Navigator
	settings    SettingsReader
	selector    *themes.Selector
	locales     interfaces.LocaleService
	headerMenu  string
	footerMenu  string
	assetPrefix string
	logger      interfaces.Logger
}

// NewBuilder constructs a builder.
func NewBuilder(navigator Navigator, reader SettingsReader, selector *themes.Selector, locales interfaces.LocaleService, opts ...Option) *Builder {
	b := &Builder{
		navigator:   navigator,
		settings:    reader,
		selector:    selector,
		locales:     locales,
		headerMenu:  "public_header",
		footerMenu:  "public_footer",
		assetPrefix: "/assets",
		logger:      logging.NoOp(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(b)
		}
	}
	return b
}

// Build renders the context for req. A missing header or footer menu
// renders empty; other failures are returned.
func (b *Builder) Build(ctx context.Context, req Request) (*Context, error) {
	defaultLocale := b.locales.DefaultLocale()
	locale := NegotiateLocale(req.Locale, req.AcceptLanguage, b.locales.Locales(), defaultLocale)
	translator := b.locales.Translator()

	out := &Context{Locale: locale}
	for _, code := range b.locales.Locales() {
		out.Languages = append(out.Languages, Language{
			Code:   code,
			Label:  i18n.Label(translator, code, "site.language."+code),
			Active: code == locale,
		})
	}

	siteValues, err := b.settings.Get(ctx, settings.GroupSite)
	if err != nil {
		return nil, err
	}
	out.Name = siteValues.Label("name", locale, defaultLocale)
	if out.Name == "" {
		out.Name = i18n.Label(translator, locale, "site.title")
	}
	out.Tagline = siteValues.Label("tagline", locale, defaultLocale)

	theme, err := b.theme(locale, defaultLocale)
	if err != nil {
		return nil, err
	}
	out.Theme = theme

	if out.Header, err = b.menu(ctx, b.headerMenu, locale, req.Roles); err != nil {
		return nil, err
	}
	links, err := b.menu(ctx, b.footerMenu, locale, req.Roles)
	if err != nil {
		return nil, err
	}
	footer, err := b.settings.Get(ctx, settings.GroupFooter)
	if err != nil {
		return nil, err
	}
	out.Footer = Footer{
		Links:     links,
		Copyright: footer.Label("copyright", locale, defaultLocale),
		Social:    stringMap(footer.Map("social")),
	}

	addresses, err := b.settings.Get(ctx, settings.GroupAddresses)
	if err != nil {
		return nil, err
	}
	out.Addresses = buildAddresses(addresses.List("entries"), locale, defaultLocale)

	minister, err := b.settings.Get(ctx, settings.GroupMinister)
	if err != nil {
		return nil, err
	}
	if name := minister.String("name"); name != "" {
		out.Minister = &Minister{
			Name:     name,
			Title:    minister.Label("title", locale, defaultLocale),
			Message:  minister.Label("message", locale, defaultLocale),
			PhotoURL: minister.String("photo_url"),
		}
	}
	return out, nil
}

func (b *Builder) theme(locale, defaultLocale string) (ThemeView, error) {
	if b.selector == nil {
		return ThemeView{Code: themes.DefaultCode}, nil
	}
	active := b.selector.Active()
	styles, scripts, err := active.Theme.AssetURLs(b.assetPrefix)
	if err != nil {
		return ThemeView{}, fmt.Errorf("site: theme %s: %w", active.Theme.Code, err)
	}
	return ThemeView{
		Code:         active.Theme.Code,
		Name:         active.Theme.Name(locale, defaultLocale),
		Variant:      active.Variant,
		PrimaryColor: active.PrimaryColor,
		LogoURL:      active.LogoURL,
		Styles:       styles,
		Scripts:      scripts,
	}, nil
}

func (b *Builder) menu(ctx context.Context, name, locale string, roles []string) ([]menus.NavigationNode, error) {
	nodes, err := b.navigator.ResolveNavigation(ctx, menus.NavigationRequest{MenuName: name, Locale: locale, Roles: roles})
	if err != nil {
		var notFound *menus.NotFoundError
		if errors.As(err, &notFound) {
			logging.WithMenuContext(b.logger, name, locale).Debug("site.menu.missing")
			return []menus.NavigationNode{}, nil
		}
		return nil, err
	}
	return nodes, nil
}

func buildAddresses(entries []any, locale, defaultLocale string) []Address {
	out := []Address{}
	for _, raw := range entries {
		entry, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		values := settings.Values(entry)
		address := Address{
			Label:   values.Label("label", locale, defaultLocale),
			Phone:   values.String("phone"),
			Fax:     values.String("fax"),
			Email:   values.String("email"),
			Primary: values.Bool("primary", false),
		}
		for _, line := range []string{
			values.String("line1"),
			values.String("line2"),
			strings.TrimSpace(values.String("postcode") + " " + values.String("city")),
			values.String("state"),
		} {
			if line != "" {
				address.Lines = append(address.Lines, line)
			}
		}
		out = append(out, address)
	}
	return out
}

func stringMap(values settings.Values) map[string]string {
	if len(values) == 0 {
		return nil
	}
	out := make(map[string]string, len(values))
	for _, key := range values.Keys() {
		if text := values.String(key); text != "" {
			out[key] = text
		}
	}
	return out
}
