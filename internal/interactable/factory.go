package interactable

import "fmt"

// New builds the variant matching a map object's declared type tag.
func New(areaType, id string, rect Rect) (Interactable, error) {
	switch areaType {
	case TypeConversationArea:
		return NewConversationArea(id, rect), nil
	case TypeViewingArea:
		return NewViewingArea(id, rect), nil
	case TypeGameArea:
		return NewGameArea(id, rect), nil
	case TypeHospitalArea:
		return NewHospitalArea(id, rect), nil
	default:
		return nil, fmt.Errorf("unknown interactable type %q", areaType)
	}
}
