package menus

import (
	"regexp"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"
)

var (
	menuNamePattern = regexp.MustCompile(`^[a-z0-9][a-z0-9_\-]*$`)
	routeKeyPattern = regexp.MustCompile(`^[a-z0-9][a-z0-9_.\-]*$`)
)

const maxMegaMenuColumns = 6

// Validate checks the menu payload.
func (in CreateMenuInput) Validate() error {
	return validation.ValidateStruct(&in,
		validation.Field(&in.Name, validation.Required, validation.Length(1, 64), validation.Match(menuNamePattern)),
	)
}

// Validate checks the item payload before any store lookups happen.
func (in AddMenuItemInput) Validate() error {
	return validation.ValidateStruct(&in,
		validation.Field(&in.MenuID, validation.By(requiredUUID)),
		validation.Field(&in.Labels, validation.Required, validation.By(nonBlankLabels)),
		validation.Field(&in.RouteName, validation.Length(0, 191), validation.Match(routeKeyPattern)),
		validation.Field(&in.URL, validation.Length(0, 2048)),
		validation.Field(&in.Target, validation.In(TargetSelf, TargetBlank)),
		validation.Field(&in.MegaMenuColumns, validation.By(megaMenuColumns)),
	)
}

// Validate checks the fields present on the patch.
func (in UpdateMenuItemInput) Validate() error {
	return validation.ValidateStruct(&in,
		validation.Field(&in.Labels, validation.When(in.Labels != nil, validation.By(nonBlankLabels))),
		validation.Field(&in.RouteName, validation.Length(0, 191), validation.Match(routeKeyPattern)),
		validation.Field(&in.Target, validation.In(TargetSelf, TargetBlank)),
		validation.Field(&in.MegaMenuColumns, validation.By(megaMenuColumns)),
	)
}

func requiredUUID(value any) error {
	if id, _ := value.(uuid.UUID); id == uuid.Nil {
		return validation.NewError("validation_required", "cannot be blank")
	}
	return nil
}

func nonBlankLabels(value any) error {
	labels, _ := value.(map[string]string)
	for _, label := range labels {
		if strings.TrimSpace(label) != "" {
			return nil
		}
	}
	return validation.NewError("validation_labels_blank", "at least one label is required")
}

func megaMenuColumns(value any) error {
	columns, _ := value.(*int)
	if columns == nil {
		return nil
	}
	if *columns < 1 || *columns > maxMegaMenuColumns {
		return validation.NewError("validation_mega_menu_columns", "must be between 1 and 6")
	}
	return nil
}
