package jobs

import (
	"context"
	"errors"

	"chartintel/internal/services"
	"chartintel/internal/types"

	logger "github.com/Bparsons0904/goLogger"
)

type (
	GenreImporter interface {
		ImportByGenre(ctx context.Context, tag string, limit int) (services.ImportResult, error)
	}

	ArtistGenreImporter interface {
		GenreImporter
		ImportFromListenTracking(
			ctx context.Context,
			limit int,
			window types.TimeWindow,
		) (services.ImportResult, error)
	}
)

// GenreImportJob walks the configured tags, then the listen tracking chart,
// to discover artists that never reach the global charts.
type GenreImportJob struct {
	artists  ArtistGenreImporter
	tracks   GenreImporter
	tags     []string
	limit    int
	schedule services.Schedule
	log      logger.Logger
}

func NewGenreImportJob(
	artists ArtistGenreImporter,
	tracks GenreImporter,
	tags []string,
	limit int,
	schedule services.Schedule,
) *GenreImportJob {
	log := logger.New("genreImportJob")
	log.Info("Creating new genre import job", "schedule", schedule.String(), "tags", tags)

	return &GenreImportJob{
		artists:  artists,
		tracks:   tracks,
		tags:     tags,
		limit:    limit,
		schedule: schedule,
		log:      log,
	}
}

func (j *GenreImportJob) Name() string {
	return "GenreImport"
}

// Execute keeps going past a failing tag and reports every failure at the
// end.
func (j *GenreImportJob) Execute(ctx context.Context) error {
	log := j.log.Function("Execute")

	var errs []error
	independent := 0

	for _, tag := range j.tags {
		if err := ctx.Err(); err != nil {
			return err
		}

		artists, err := j.artists.ImportByGenre(ctx, tag, j.limit)
		if err != nil {
			log.Er("genre artist import failed", err, "tag", tag)
			errs = append(errs, err)
		}
		independent += artists.Imported

		if _, err := j.tracks.ImportByGenre(ctx, tag, j.limit); err != nil {
			log.Er("genre track import failed", err, "tag", tag)
			errs = append(errs, err)
		}
	}

	listens, err := j.artists.ImportFromListenTracking(ctx, j.limit, types.WindowWeek)
	if err != nil {
		log.Er("listen chart import failed", err)
		errs = append(errs, err)
	}

	if err := errors.Join(errs...); err != nil {
		return err
	}

	log.Info("Genre import completed successfully",
		"tags", len(j.tags),
		"independentArtists", independent,
		"listenChartImported", listens.Imported,
	)
	return nil
}

func (j *GenreImportJob) Schedule() services.Schedule {
	return j.schedule
}
