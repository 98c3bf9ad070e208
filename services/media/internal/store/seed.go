package store

import (
	"context"
	"fmt"

	"github.com/example/media-catalog/internal/media"
)

var seedTitles = []media.Fields{
	{Title: "Inception", Kind: media.KindFilm, Director: "Christopher Nolan", Budget: "$160M", Location: "Los Angeles", Duration: 148, ReleaseYear: 2010},
	{Title: "Breaking Bad", Kind: media.KindSeries, Director: "Vince Gilligan", Budget: "$3M/episode", Location: "Albuquerque", Duration: 49, ReleaseYear: 2008},
	{Title: "Spirited Away", Kind: media.KindFilm, Director: "Hayao Miyazaki", Budget: "$19M", Location: "Tokyo", Duration: 125, ReleaseYear: 2001},
	{Title: "Dark", Kind: media.KindSeries, Director: "Baran bo Odar", Budget: "", Location: "Berlin", Duration: 60, ReleaseYear: 2017},
	{Title: "Heat", Kind: media.KindFilm, Director: "Michael Mann", Budget: "$60M", Location: "Los Angeles", Duration: 170, ReleaseYear: 1995},
}

// Seed inserts n demo records, cycling through a small fixed set of titles.
func Seed(ctx context.Context, s MediaStore, n int) error {
	for i := 0; i < n; i++ {
		f := seedTitles[i%len(seedTitles)]
		if i >= len(seedTitles) {
			f.Title = fmt.Sprintf("%s (%d)", f.Title, i/len(seedTitles)+1)
		}
		if _, err := s.Create(ctx, f); err != nil {
			return fmt.Errorf("seed media %d: %w", i, err)
		}
	}
	return nil
}
