package activityapi

import (
	"fmt"

	"github.com/tidwall/gjson"

	"signupdesk/internal/domain/activity"
)

// decodeCatalog walks the name -> details object in document order.
// encoding/json maps lose key order, so gjson iterates the raw bytes instead.
func decodeCatalog(body []byte) (activity.Catalog, error) {
	if !gjson.ValidBytes(body) {
		return nil, ErrMalformedResponse
	}
	root := gjson.ParseBytes(body)
	if !root.IsObject() {
		return nil, fmt.Errorf("%w: expected an object of activities", ErrMalformedResponse)
	}

	catalog := activity.Catalog{}
	var decodeErr error
	root.ForEach(func(key, value gjson.Result) bool {
		if !value.IsObject() {
			decodeErr = fmt.Errorf("%w: activity %q is not an object", ErrMalformedResponse, key.String())
			return false
		}
		participants := value.Get("participants")
		if !participants.IsArray() {
			decodeErr = fmt.Errorf("%w: activity %q has no participants list", ErrMalformedResponse, key.String())
			return false
		}
		a := activity.Activity{
			Name:            key.String(),
			Description:     value.Get("description").String(),
			Schedule:        value.Get("schedule").String(),
			MaxParticipants: int(value.Get("max_participants").Int()),
			Participants:    []string{},
		}
		for _, p := range participants.Array() {
			a.Participants = append(a.Participants, p.String())
		}
		catalog = append(catalog, a)
		return true
	})
	if decodeErr != nil {
		return nil, decodeErr
	}
	return catalog, nil
}
