package classify

import (
	"strings"

	"civic-portal/internal/models"
)

// AddressPlaceholder is replaced with the resolved address once the wizard
// knows where the photo was taken.
const AddressPlaceholder = "[ADDRESS]"

var templates = map[models.Category]string{
	models.CategoryPothole:     "Pothole reported near [ADDRESS]. The road surface is damaged and poses a risk to vehicles and pedestrians.",
	models.CategoryGarbage:     "Garbage has accumulated near [ADDRESS] and needs to be cleared.",
	models.CategorySewage:      "Sewage overflow or blocked drain near [ADDRESS] requires attention.",
	models.CategoryStreetLight: "Street light not working near [ADDRESS]. The area is poorly lit at night.",
	models.CategoryFallenTree:  "A fallen tree near [ADDRESS] is blocking the way and needs removal.",
}

func DescriptionTemplate(c models.Category) string {
	return templates[c]
}

// FillAddress substitutes the placeholder when an address is known.
func FillAddress(desc, address string) string {
	if address == "" {
		return desc
	}
	return strings.ReplaceAll(desc, AddressPlaceholder, address)
}
