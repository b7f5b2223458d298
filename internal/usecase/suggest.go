package usecase

import (
	"sort"
	"time"

	"github.com/eliteGoblin/focusd/reclaim/internal/domain"
)

// Thresholds used by the suggestion policy.
const (
	TempAgeLimit         = 7 * 24 * time.Hour
	StaleAgeLimit        = 30 * 24 * time.Hour
	RecentTempMinTotal   = int64(100 << 20)
	LargeMediaMinSize    = int64(1 << 30)
	LargeDownloadMinSize = int64(500 << 20)
	LargeImageMinSize    = int64(1 << 30)
)

// SuggestionToggles switch individual suggestion groups off.
type SuggestionToggles struct {
	Installers bool
	Media      bool
	Backups    bool
	Trash      bool
}

// AllSuggestions enables every group.
func AllSuggestions() SuggestionToggles {
	return SuggestionToggles{Installers: true, Media: true, Backups: true, Trash: true}
}

// SuggestionEngineImpl implements domain.SuggestionEngine.
// It only reads the catalog's category buckets.
type SuggestionEngineImpl struct {
	clock   domain.Clock
	toggles SuggestionToggles
}

// NewSuggestionEngine creates an engine. Ages are measured against clock.
func NewSuggestionEngine(clock domain.Clock, toggles SuggestionToggles) *SuggestionEngineImpl {
	if clock == nil {
		clock = RealClock{}
	}
	return &SuggestionEngineImpl{clock: clock, toggles: toggles}
}

// Suggest groups catalog records into suggestions, safe ones first and
// larger ones before smaller ones within each group.
func (e *SuggestionEngineImpl) Suggest(c *domain.Catalog) []domain.Suggestion {
	if c == nil {
		return nil
	}
	now := e.clock.Now()
	bucket := func(cat domain.Category) []*domain.FileRecord { return c.ByCategory[cat] }

	var out []domain.Suggestion
	add := func(key string, cat domain.Category, desc string, safety domain.SafetyLevel, files []*domain.FileRecord) {
		if len(files) == 0 {
			return
		}
		out = append(out, domain.NewSuggestion(key, cat, desc, safety, files))
	}

	add("cache", domain.CategoryCache, "Cache files", domain.SafetySafe,
		filterRecords(bucket(domain.CategoryCache), disposable))

	temps := bucket(domain.CategoryTemp)
	add("temp-old", domain.CategoryTemp, "Temporary files older than 7 days", domain.SafetySafe,
		filterRecords(temps, olderThan(now, TempAgeLimit)))
	recent := filterRecords(temps, func(r *domain.FileRecord) bool { return !olderThan(now, TempAgeLimit)(r) })
	if sumSizes(recent) > RecentTempMinTotal {
		add("temp-recent", domain.CategoryTemp, "Recent temporary files", domain.SafetyUser, recent)
	}

	add("crashdumps", domain.CategoryCrashDumps, "Crash dumps and error reports", domain.SafetySafe,
		bucket(domain.CategoryCrashDumps))

	if e.toggles.Installers {
		add("installers", domain.CategoryInstallers, "Installers older than 30 days", domain.SafetyUser,
			filterRecords(bucket(domain.CategoryInstallers), olderThan(now, StaleAgeLimit)))
	}
	if e.toggles.Backups {
		add("backups", domain.CategoryBackups, "Backup files older than 30 days", domain.SafetyUser,
			filterRecords(bucket(domain.CategoryBackups), olderThan(now, StaleAgeLimit)))
	}
	if e.toggles.Media {
		add("media-large", domain.CategoryMedia, "Large media files", domain.SafetyUser,
			filterRecords(bucket(domain.CategoryMedia), largerThan(LargeMediaMinSize)))
	}

	add("downloads-large", domain.CategoryDownloads, "Large files in Downloads", domain.SafetyUser,
		filterRecords(bucket(domain.CategoryDownloads), largerThan(LargeDownloadMinSize)))

	if e.toggles.Trash {
		add("recycle", domain.CategoryRecycle, "Items in the trash", domain.SafetySafe,
			bucket(domain.CategoryRecycle))
	}
	add("thumbnails", domain.CategoryThumbnails, "Thumbnail caches", domain.SafetySafe,
		filterRecords(bucket(domain.CategoryThumbnails), disposable))
	add("virtual-large", domain.CategoryVirtual, "Large disk images", domain.SafetyUser,
		filterRecords(bucket(domain.CategoryVirtual), largerThan(LargeImageMinSize)))

	SortSuggestions(out)
	return out
}

// SortSuggestions orders safe suggestions first, then by total size descending.
// The sort is stable so equal suggestions keep their policy order.
func SortSuggestions(s []domain.Suggestion) {
	sort.SliceStable(s, func(i, j int) bool {
		si, sj := s[i].Safety == domain.SafetySafe, s[j].Safety == domain.SafetySafe
		if si != sj {
			return si
		}
		return s[i].TotalSize > s[j].TotalSize
	})
}

// filterRecords keeps matching records in catalog order. The records are
// shared, not copied.
func filterRecords(recs []*domain.FileRecord, keep func(*domain.FileRecord) bool) []*domain.FileRecord {
	var out []*domain.FileRecord
	for _, r := range recs {
		if keep(r) {
			out = append(out, r)
		}
	}
	return out
}

// disposable keeps members of a group labelled safe: safe or unclassified
// files only, never user content or anything the gate would refuse.
func disposable(r *domain.FileRecord) bool {
	return r.Safety == domain.SafetySafe || r.Safety == domain.SafetyUnknown
}

func olderThan(now time.Time, age time.Duration) func(*domain.FileRecord) bool {
	return func(r *domain.FileRecord) bool {
		return now.Sub(r.ModifiedAt) > age
	}
}

func largerThan(size int64) func(*domain.FileRecord) bool {
	return func(r *domain.FileRecord) bool {
		return r.Size > size
	}
}

func sumSizes(recs []*domain.FileRecord) int64 {
	var total int64
	for _, r := range recs {
		total += r.Size
	}
	return total
}

// Ensure SuggestionEngineImpl implements domain.SuggestionEngine.
var _ domain.SuggestionEngine = (*SuggestionEngineImpl)(nil)
