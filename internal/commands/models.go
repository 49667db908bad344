package commands

import (
	"fmt"

	"github.com/abstract-tutoring/app-flashcards/cardfmt/internal/cards"
)

// DeckCard is one card as stored in deck_cards. Front and Back hold the
// compact JSON of each side.
type DeckCard struct {
	Position int
	Front    []byte
	Back     []byte
}

func deckFromDocument(doc any) ([]DeckCard, error) {
	if err := cards.Validate(doc); err != nil {
		return nil, err
	}

	raw, _ := doc.(*cards.Object).Get("cards")
	list := raw.([]any)
	deck := make([]DeckCard, 0, len(list))
	for i, item := range list {
		card := item.(*cards.Object)
		front, _ := card.Get("front")
		back, _ := card.Get("back")

		frontJSON, err := cards.Marshal(front, "")
		if err != nil {
			return nil, fmt.Errorf("marshal front of card %d: %w", i, err)
		}
		backJSON, err := cards.Marshal(back, "")
		if err != nil {
			return nil, fmt.Errorf("marshal back of card %d: %w", i, err)
		}
		deck = append(deck, DeckCard{Position: i, Front: frontJSON, Back: backJSON})
	}
	return deck, nil
}
