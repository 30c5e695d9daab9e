package projections

import (
	"fmt"
	"slices"

	"signupdesk/internal/domain/activity"
)

// NoParticipantsText is shown on a card with an empty roster.
const NoParticipantsText = "No participants yet"

// Board is the rendered activity listing plus the options of the signup select.
type Board struct {
	Cards       []Card
	Options     []string
	LoadFailed  bool
	FailureText string
}

// Card is one activity as displayed.
type Card struct {
	Name         string
	Description  string // Markdown
	Schedule     string
	SpotsLeft    int
	SpotsText    string
	Participants []ParticipantRow
	EmptyNotice  string
}

// ParticipantRow is one roster entry. Activity and Email identify the row for removal.
type ParticipantRow struct {
	Activity  string
	Email     string
	Removable bool
}

// BuildBoard renders a catalog snapshot.
// PRE: catalog is in response order
// POST: One card and one option per activity, in catalog order
// INVARIANT: Rows are removable iff sessionActive
func BuildBoard(catalog activity.Catalog, sessionActive bool) Board {
	b := Board{
		Cards:   make([]Card, 0, len(catalog)),
		Options: catalog.Names(),
	}
	for _, a := range catalog {
		card := Card{
			Name:        a.Name,
			Description: a.Description,
			Schedule:    a.Schedule,
			SpotsLeft:   a.SpotsLeft(),
			SpotsText:   fmt.Sprintf("%d spots left", a.SpotsLeft()),
		}
		if len(a.Participants) == 0 {
			card.EmptyNotice = NoParticipantsText
		}
		for _, email := range a.Participants {
			card.Participants = append(card.Participants, ParticipantRow{
				Activity:  a.Name,
				Email:     email,
				Removable: sessionActive,
			})
		}
		b.Cards = append(b.Cards, card)
	}
	return b
}

// BuildFailedBoard renders a failed fetch. The select keeps the options it had.
// POST: No cards, LoadFailed set, Options copied from previous
func BuildFailedBoard(previousOptions []string, text string) Board {
	return Board{
		Options:     slices.Clone(previousOptions),
		LoadFailed:  true,
		FailureText: text,
	}
}
