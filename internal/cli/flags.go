package cli

import (
	"github.com/julianstephens/agenda/internal/storage"
)

// ContentFlags address one occurrence by date and exact content. Leaving
// --name off matches only rows without a name.
type ContentFlags struct {
	Description string  `arg:"" help:"Description of the item."`
	Date        string  `short:"d" help:"Date (YYYY-MM-DD, today, tomorrow, yesterday)." default:"today"`
	Name        *string `short:"n" help:"Name of the item, if it has one."`
}

func (f ContentFlags) Content() storage.Content {
	return storage.Content{Description: f.Description, Name: f.Name}
}
