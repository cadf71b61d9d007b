package panel

import (
	"cmp"
	"context"
	"errors"
	"slices"
	"strings"

	"github.com/goliatone/go-portal/internal/i18n"
	"github.com/goliatone/go-portal/internal/logging"
	"github.com/goliatone/go-portal/internal/navigation"
	"github.com/goliatone/go-portal/internal/permissions"
	"github.com/goliatone/go-portal/pkg/interfaces"
)

// Resolver is the navigation surface the assembler reads.
type Resolver interface {
	SectionResolver
	Groups(ctx context.Context) []navigation.Group
}

// Option configures an Assembler.
type Option func(*Assembler)

// WithSections replaces the registered sections.
func WithSections(sections ...Section) Option {
	return func(a *Assembler) {
		a.sections = slices.Clone(sections)
	}
}

// WithGroupTable replaces the static group table.
func WithGroupTable(groups []GroupDefinition) Option {
	return func(a *Assembler) {
		if len(groups) > 0 {
			a.groups = slices.Clone(groups)
		}
	}
}

// WithDefaultLocale sets the locale used when a request names none.
func WithDefaultLocale(locale string) Option {
	return func(a *Assembler) {
		if trimmed := strings.TrimSpace(locale); trimmed != "" {
			a.defaultLocale = trimmed
		}
	}
}

// WithLogger sets the assembler logger.
func WithLogger(logger interfaces.Logger) Option {
	return func(a *Assembler) {
		if logger != nil {
			a.logger = logger
		}
	}
}

// Assembler merges the static group table and section declarations with the
// configured navigation into the sidebar handed to the UI.
type Assembler struct {
	resolver      Resolver
	translator    interfaces.Translator
	sections      []Section
	groups        []GroupDefinition
	defaultLocale string
	logger        interfaces.Logger
}

// NewAssembler creates an assembler with the default ministry sections.
func NewAssembler(resolver Resolver, translator interfaces.Translator, opts ...Option) *Assembler {
	a := &Assembler{
		resolver:      resolver,
		translator:    translator,
		sections:      DefaultSections(),
		groups:        StaticGroups(),
		defaultLocale: "ms",
		logger:        logging.NoOp(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(a)
		}
	}
	return a
}

// Sections returns the registered sections.
func (a *Assembler) Sections() []Section {
	return slices.Clone(a.sections)
}

// GroupKeys returns the ordered group keys: the static table when nothing is
// configured, otherwise the active configured groups in sort order.
func (a *Assembler) GroupKeys(ctx context.Context) []string {
	configured := a.configuredGroups(ctx)
	if len(configured) == 0 {
		keys := make([]string, 0, len(a.groups))
		for _, group := range a.groups {
			keys = append(keys, group.Key)
		}
		return keys
	}
	keys := make([]string, 0, len(configured))
	for _, group := range configured {
		if group.Active {
			keys = append(keys, group.Key)
		}
	}
	return keys
}

// GroupLabels returns GroupKeys localized through the group table. Keys
// missing from the table are used as their own translation key; when that
// has no translation the configured menu label is used.
func (a *Assembler) GroupLabels(ctx context.Context, locale string) []string {
	locale = a.locale(locale)
	configured := a.configuredGroups(ctx)
	keys := a.GroupKeys(ctx)
	labels := make([]string, 0, len(keys))
	for _, key := range keys {
		group, _ := lookupGroup(configured, key)
		labels = append(labels, a.groupLabel(key, group, locale))
	}
	return labels
}

// BuildRequest selects the locale and viewer permissions of a sidebar.
// A nil Permissions falls back to the checker stored on the context.
type BuildRequest struct {
	Locale      string
	Permissions permissions.Checker
}

// Navigation is the assembled sidebar.
type Navigation struct {
	Locale string            `json:"locale"`
	Groups []NavigationGroup `json:"groups"`
}

// NavigationGroup is one sidebar heading. The leading group of sections
// without a group has an empty key and label.
type NavigationGroup struct {
	Key      string              `json:"key"`
	Label    string              `json:"label"`
	Sections []NavigationSection `json:"sections"`
}

// NavigationSection is one rendered section.
type NavigationSection struct {
	Name  string `json:"name"`
	Key   string `json:"key,omitempty"`
	Label string `json:"label"`
	Icon  string `json:"icon,omitempty"`
	Sort  *int   `json:"sort,omitempty"`
}

type placed struct {
	section NavigationSection
	hasSort bool
	sort    int
	order   int
}

// Build places every visible, permitted section under its group by key and
// localizes the result. Sections are ordered by resolved sort order, then
// registration order; sections without any sort come last. Sections naming
// an unknown group form trailing groups in first-seen order, except when
// their group is configured and inactive, which hides them.
func (a *Assembler) Build(ctx context.Context, req BuildRequest) Navigation {
	locale := a.locale(req.Locale)
	if req.Permissions != nil {
		ctx = permissions.WithChecker(ctx, req.Permissions)
	}

	configured := a.configuredGroups(ctx)
	ordered := a.GroupKeys(ctx)
	inactive := map[string]struct{}{}
	for _, group := range configured {
		if !group.Active {
			inactive[group.Key] = struct{}{}
		}
	}

	buckets := map[string][]placed{}
	var trailing []string
	for idx, section := range a.sections {
		if !VisibleFor(ctx, a.resolver, section) {
			continue
		}
		if !permissions.Allowed(ctx, section.Permissions().Read) {
			continue
		}
		groupKey := strings.TrimSpace(section.GroupKey())
		if groupKey != "" && !slices.Contains(ordered, groupKey) {
			if _, hidden := inactive[groupKey]; hidden {
				continue
			}
			if !slices.Contains(trailing, groupKey) {
				trailing = append(trailing, groupKey)
			}
		}

		sort, hasSort := SortFor(ctx, a.resolver, section)
		entry := placed{
			section: NavigationSection{
				Name:  section.Name(),
				Key:   navigationKey(section),
				Label: i18n.Label(a.translator, locale, section.LabelKey()),
				Icon:  section.Icon(),
			},
			hasSort: hasSort,
			sort:    sort,
			order:   idx,
		}
		if hasSort {
			entry.section.Sort = &sort
		}
		buckets[groupKey] = append(buckets[groupKey], entry)
	}

	nav := Navigation{Locale: locale, Groups: []NavigationGroup{}}
	if entries := buckets[""]; len(entries) > 0 {
		nav.Groups = append(nav.Groups, NavigationGroup{Sections: sortPlaced(entries)})
	}
	for _, key := range append(ordered, trailing...) {
		entries := buckets[key]
		if len(entries) == 0 {
			continue
		}
		group, _ := lookupGroup(configured, key)
		nav.Groups = append(nav.Groups, NavigationGroup{
			Key:      key,
			Label:    a.groupLabel(key, group, locale),
			Sections: sortPlaced(entries),
		})
	}
	return nav
}

func sortPlaced(entries []placed) []NavigationSection {
	slices.SortStableFunc(entries, func(x, y placed) int {
		switch {
		case x.hasSort && y.hasSort && x.sort != y.sort:
			return cmp.Compare(x.sort, y.sort)
		case x.hasSort != y.hasSort:
			if x.hasSort {
				return -1
			}
			return 1
		}
		return cmp.Compare(x.order, y.order)
	})
	out := make([]NavigationSection, 0, len(entries))
	for _, entry := range entries {
		out = append(out, entry.section)
	}
	return out
}

func (a *Assembler) configuredGroups(ctx context.Context) []navigation.Group {
	if a.resolver == nil {
		return nil
	}
	return a.resolver.Groups(ctx)
}

func (a *Assembler) groupLabel(key string, configured navigation.Group, locale string) string {
	lookup := key
	for _, group := range a.groups {
		if group.Key == key {
			lookup = group.LabelKey
			break
		}
	}
	if a.translator == nil {
		return fallbackLabel(configured, locale, a.defaultLocale, lookup)
	}
	text, err := a.translator.Translate(locale, lookup)
	if errors.Is(err, i18n.ErrMissingTranslation) {
		a.logger.Debug("panel.group.label_missing", "group", key, "locale", locale)
		return fallbackLabel(configured, locale, a.defaultLocale, text)
	}
	return text
}

func fallbackLabel(group navigation.Group, locale, defaultLocale, text string) string {
	if label := group.Label(locale, defaultLocale); label != "" {
		return label
	}
	return text
}

func lookupGroup(groups []navigation.Group, key string) (navigation.Group, bool) {
	for _, group := range groups {
		if group.Key == key {
			return group, true
		}
	}
	return navigation.Group{}, false
}

func (a *Assembler) locale(locale string) string {
	if trimmed := strings.TrimSpace(locale); trimmed != "" {
		return trimmed
	}
	return a.defaultLocale
}
