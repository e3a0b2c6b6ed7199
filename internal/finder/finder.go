// Package finder orchestrates the doctor discovery pipeline: nearby
// lookup, ranking, site crawl, and roster extraction, aggregated into a
// per-place report.
package finder

import (
	"context"
	"math"
	"strings"
	"sync"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/saransh482003/healthassist/internal/model"
	"github.com/saransh482003/healthassist/internal/rank"
	"github.com/saransh482003/healthassist/internal/store"
	"github.com/saransh482003/healthassist/pkg/places"
)

const (
	defaultWorkers       = 3
	defaultCrawlBudget   = 5
	defaultPagesPerPlace = 3
)

// PageFinder discovers candidate doctor pages on a hospital site.
type PageFinder interface {
	FindDoctorPages(ctx context.Context, seedURL, specialty string, maxPages int) ([]string, error)
}

// RosterExtractor turns one page into practitioner records.
type RosterExtractor interface {
	Extract(ctx context.Context, url, specialty string) ([]model.PractitionerRecord, error)
}

// Request describes one doctor discovery run.
type Request struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Specialty string  `json:"specialty"`
	// Type is the place category searched, defaulting to "hospital".
	Type   string `json:"type,omitempty"`
	Radius int    `json:"radius,omitempty"`
	// Limit caps how many ranked places are processed. Zero keeps the
	// ranker's own cutoff.
	Limit int `json:"limit,omitempty"`
}

// Finder runs the discovery pipeline.
type Finder struct {
	places    places.Client
	store     store.Store
	crawler   PageFinder
	extractor RosterExtractor

	workers       int
	crawlBudget   int
	pagesPerPlace int
	crawlTimeout  time.Duration
}

// Option configures the Finder.
type Option func(*Finder)

// WithWorkers caps concurrent per-place pipelines.
func WithWorkers(n int) Option {
	return func(f *Finder) {
		if n > 0 {
			f.workers = n
		}
	}
}

// WithCrawlBudget caps pages visited per site crawl.
func WithCrawlBudget(n int) Option {
	return func(f *Finder) {
		if n > 0 {
			f.crawlBudget = n
		}
	}
}

// WithPagesPerPlace caps pages sent to the extractor per place.
func WithPagesPerPlace(n int) Option {
	return func(f *Finder) {
		if n > 0 {
			f.pagesPerPlace = n
		}
	}
}

// WithCrawlTimeout bounds each place's site crawl. Zero means no
// deadline beyond the request context.
func WithCrawlTimeout(d time.Duration) Option {
	return func(f *Finder) {
		if d > 0 {
			f.crawlTimeout = d
		}
	}
}

// New creates a Finder.
func New(pc places.Client, st store.Store, crawler PageFinder, extractor RosterExtractor, opts ...Option) *Finder {
	f := &Finder{
		places:        pc,
		store:         st,
		crawler:       crawler,
		extractor:     extractor,
		workers:       defaultWorkers,
		crawlBudget:   defaultCrawlBudget,
		pagesPerPlace: defaultPagesPerPlace,
	}
	for _, o := range opts {
		o(f)
	}
	return f
}

// FindDoctors runs the pipeline for one request. Per-place failures are
// soft: each place's report carries its own error string, and a failure
// at one place never aborts the others. Only the initial nearby lookup
// can fail the whole run.
func (f *Finder) FindDoctors(ctx context.Context, req Request) (model.AggregateReport, error) {
	placeType := req.Type
	if placeType == "" {
		placeType = "hospital"
	}

	candidates, err := f.places.NearbySearch(ctx, req.Latitude, req.Longitude, placeType, req.Radius)
	if err != nil {
		return nil, eris.Wrap(err, "finder: nearby search")
	}

	// The nearby payload has no distance; compute it here so the ranker
	// can order by proximity.
	for i := range candidates {
		candidates[i].Distance = haversineKm(req.Latitude, req.Longitude,
			candidates[i].Latitude, candidates[i].Longitude)
	}

	ranked := rank.Rank(candidates)
	if req.Limit > 0 && len(ranked) > req.Limit {
		ranked = ranked[:req.Limit]
	}
	zap.L().Info("finder: ranked candidates",
		zap.Int("nearby", len(candidates)),
		zap.Int("selected", len(ranked)),
		zap.String("specialty", req.Specialty),
	)

	report := make(model.AggregateReport, len(ranked))
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(f.workers)

	for _, place := range ranked {
		place := place
		g.Go(func() error {
			pr := f.processPlace(gctx, place, placeType, req.Specialty)
			mu.Lock()
			report[place.PlaceID] = pr
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, eris.Wrap(err, "finder: process places")
	}
	return report, nil
}

// processPlace runs website resolution, crawl, and extraction for a
// single place. Never returns an error; failures land in the report.
func (f *Finder) processPlace(ctx context.Context, place model.Place, placeType, specialty string) *model.PlaceReport {
	pr := &model.PlaceReport{
		Name:    place.Name,
		Pages:   []string{},
		Doctors: []model.PractitionerRecord{},
	}

	hospital, cached, err := f.resolveHospital(ctx, place, placeType)
	if err != nil {
		zap.L().Warn("finder: resolve hospital failed",
			zap.String("place_id", place.PlaceID),
			zap.Error(err),
		)
		pr.Error = "place details unavailable"
		return pr
	}
	if hospital == nil || hospital.Website == "" {
		pr.Error = "no website found"
		return pr
	}
	pr.Website = hospital.Website

	crawlCtx := ctx
	if f.crawlTimeout > 0 {
		var cancel context.CancelFunc
		crawlCtx, cancel = context.WithTimeout(ctx, f.crawlTimeout)
		defer cancel()
	}

	pages, err := f.crawler.FindDoctorPages(crawlCtx, hospital.Website, specialty, f.crawlBudget)
	if err != nil {
		zap.L().Warn("finder: crawl failed",
			zap.String("website", hospital.Website),
			zap.Error(err),
		)
		pr.Error = "crawl failed"
		return pr
	}
	if len(pages) > f.pagesPerPlace {
		pages = pages[:f.pagesPerPlace]
	}
	pr.Pages = pages

	for _, page := range pages {
		records, err := f.extractor.Extract(ctx, page, specialty)
		if err != nil {
			// Soft per-page failure: a malformed model reply or render
			// error on one page must not discard the others.
			zap.L().Warn("finder: extraction failed",
				zap.String("page", page),
				zap.Error(err),
			)
			continue
		}
		pr.Doctors = mergeRosters(pr.Doctors, records)
	}

	// First-seen wins extends to rosters: a hospital served from the
	// cache already had its roster persisted on first discovery.
	if !cached {
		f.persistRoster(ctx, hospital, specialty, pr.Doctors)
	}
	return pr
}

// resolveHospital returns the hospital for the place and whether it
// came from the cache, fetching details and caching them on a miss.
// First-seen wins at the store level.
func (f *Finder) resolveHospital(ctx context.Context, place model.Place, placeType string) (*model.Hospital, bool, error) {
	if f.store != nil {
		cached, err := f.store.GetHospitalByPlaceID(ctx, place.PlaceID)
		if err != nil {
			zap.L().Warn("finder: hospital cache read failed",
				zap.String("place_id", place.PlaceID),
				zap.Error(err),
			)
		} else if cached != nil {
			return cached, true, nil
		}
	}

	details, err := f.places.Details(ctx, place.PlaceID)
	if err != nil {
		return nil, false, err
	}
	if details == nil {
		return nil, false, nil
	}

	hospital := &model.Hospital{
		Name:      details.Name,
		PlaceID:   details.PlaceID,
		Address:   details.FormattedAddress,
		Latitude:  place.Latitude,
		Longitude: place.Longitude,
		Website:   details.Website,
		Phone:     details.FormattedPhone,
		Rating:    details.Rating,
		NumRating: details.UserRatingCount,
		Type:      placeType,
	}
	if hospital.Name == "" {
		hospital.Name = place.Name
	}

	if f.store != nil {
		stored, err := f.store.UpsertHospital(ctx, *hospital)
		if err != nil {
			// Caching is best-effort; the live details still serve the run.
			zap.L().Warn("finder: hospital cache write failed",
				zap.String("place_id", place.PlaceID),
				zap.Error(err),
			)
			return hospital, false, nil
		}
		return stored, false, nil
	}
	return hospital, false, nil
}

// persistRoster stores named practitioners against their hospital.
// Best-effort: storage failures never surface in the report.
func (f *Finder) persistRoster(ctx context.Context, hospital *model.Hospital, specialty string, records []model.PractitionerRecord) {
	if f.store == nil || hospital.ID == "" || len(records) == 0 {
		return
	}

	doctors := make([]model.Doctor, 0, len(records))
	for _, r := range records {
		if r.Name == model.Unknown {
			continue
		}
		spec := r.Specialization
		if spec == model.Unknown {
			spec = specialty
		}
		doctors = append(doctors, model.Doctor{
			Name:           r.Name,
			HospitalID:     hospital.ID,
			Specialization: spec,
		})
	}
	if len(doctors) == 0 {
		return
	}

	if err := f.store.CreateDoctors(ctx, doctors); err != nil {
		zap.L().Warn("finder: persist roster failed",
			zap.String("hospital_id", hospital.ID),
			zap.Error(err),
		)
	}
}

// mergeRosters appends records, deduplicating named practitioners
// case-insensitively. Unnamed records pass through untouched.
func mergeRosters(existing, incoming []model.PractitionerRecord) []model.PractitionerRecord {
	seen := make(map[string]bool, len(existing))
	for _, r := range existing {
		if r.Name != model.Unknown {
			seen[strings.ToLower(r.Name)] = true
		}
	}
	for _, r := range incoming {
		if r.Name != model.Unknown {
			key := strings.ToLower(r.Name)
			if seen[key] {
				continue
			}
			seen[key] = true
		}
		existing = append(existing, r)
	}
	return existing
}

// haversineKm computes the great-circle distance between two coordinates
// in kilometres.
func haversineKm(lat1, lon1, lat2, lon2 float64) float64 {
	const earthRadiusKm = 6371.0

	rad := func(deg float64) float64 { return deg * math.Pi / 180 }

	dLat := rad(lat2 - lat1)
	dLon := rad(lon2 - lon1)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(rad(lat1))*math.Cos(rad(lat2))*math.Sin(dLon/2)*math.Sin(dLon/2)
	return 2 * earthRadiusKm * math.Asin(math.Sqrt(a))
}
