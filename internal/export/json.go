package export

import (
	"encoding/json"
	"io"

	"watchflip/internal/domain"
)

// WriteJSON writes a pretty-printed array; nil becomes [].
func WriteJSON(w io.Writer, ws []domain.Watch) error {
	if ws == nil {
		ws = []domain.Watch{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(ws)
}
