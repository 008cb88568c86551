package items

import (
	"strings"

	"github.com/chris/clothing-swap-settlement/pkg/models"
)

// SubmitInput holds a new listing.
type SubmitInput struct {
	Title       string           `json:"title" validate:"required,max=100"`
	Description string           `json:"description" validate:"required,max=1000"`
	Images      []string         `json:"images" validate:"min=1,max=10,dive,required"`
	Category    models.Category  `json:"category" validate:"category"`
	Size        string           `json:"size" validate:"required,max=20"`
	Condition   models.Condition `json:"condition" validate:"condition"`
	Tags        []string         `json:"tags" validate:"max=20,dive,required,max=30"`
}

func (in *SubmitInput) normalize() {
	in.Title = strings.TrimSpace(in.Title)
	in.Description = strings.TrimSpace(in.Description)
	in.Size = strings.TrimSpace(in.Size)
	in.Tags = trimAll(in.Tags)
}

// EditInput holds the fields an owner may change. Nil fields are left as is.
type EditInput struct {
	Title       *string           `json:"title" validate:"omitempty,min=1,max=100"`
	Description *string           `json:"description" validate:"omitempty,min=1,max=1000"`
	Images      []string          `json:"images" validate:"omitempty,min=1,max=10,dive,required"`
	Category    *models.Category  `json:"category" validate:"omitempty,category"`
	Size        *string           `json:"size" validate:"omitempty,min=1,max=20"`
	Condition   *models.Condition `json:"condition" validate:"omitempty,condition"`
	Tags        []string          `json:"tags" validate:"omitempty,max=20,dive,required,max=30"`
}

func (in *EditInput) normalize() {
	for _, s := range []*string{in.Title, in.Description, in.Size} {
		if s != nil {
			*s = strings.TrimSpace(*s)
		}
	}
	in.Tags = trimAll(in.Tags)
}

func (in EditInput) empty() bool {
	return in.Title == nil && in.Description == nil && in.Images == nil &&
		in.Category == nil && in.Size == nil && in.Condition == nil && in.Tags == nil
}

// apply copies the set fields onto item and reports whether the condition changed.
func (in EditInput) apply(item *models.Item) (conditionChanged bool) {
	if in.Title != nil {
		item.Title = *in.Title
	}
	if in.Description != nil {
		item.Description = *in.Description
	}
	if in.Images != nil {
		item.Images = in.Images
	}
	if in.Category != nil {
		item.Category = *in.Category
	}
	if in.Size != nil {
		item.Size = *in.Size
	}
	if in.Tags != nil {
		item.Tags = in.Tags
	}
	if in.Condition != nil && *in.Condition != item.Condition {
		item.Condition = *in.Condition
		return true
	}
	return false
}

func trimAll(values []string) []string {
	if values == nil {
		return nil
	}
	out := make([]string, 0, len(values))
	for _, v := range values {
		out = append(out, strings.TrimSpace(v))
	}
	return out
}

// ListFilter narrows an item listing.
type ListFilter struct {
	Status     models.ItemStatus
	UploaderID string
	Limit      int32
}
