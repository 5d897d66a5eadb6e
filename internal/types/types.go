package types

// StagingAreaID is the reserved system tag that always exists and is the
// default destination for new saves. It must never be deleted.
const StagingAreaID = "staging-area"

// UnknownDomain is the sentinel domain for tabs whose URL fails to parse.
const UnknownDomain = "unknown"

// Tab is one saved browser page entry. Domain is derived from URL once at
// save time and is not recomputed on edit. SavedAt/UpdatedAt are ISO-8601;
// UpdatedAt is set only on edit.
type Tab struct {
	ID         string `json:"id"`
	Title      string `json:"title"`
	URL        string `json:"url"`
	FavIconURL string `json:"favIconUrl,omitempty"`
	Domain     string `json:"domain"`
	SavedAt    string `json:"savedAt"`
	UpdatedAt  string `json:"updatedAt,omitempty"`
}

// Group is one save-snapshot ("session") of tabs. Tabs preserve save order.
// A group is never empty at creation: an empty save produces no group.
type Group struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	CreatedAt string `json:"createdAt"`
	Tabs      []Tab  `json:"tabs"`
	IsLocked  bool   `json:"isLocked"`
}

// Tag is a top-level named partition of the collection. Groups are
// newest-first (new groups are prepended).
type Tag struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	CreatedAt   string  `json:"createdAt"`
	Groups      []Group `json:"groups"`
	IsSystem    bool    `json:"isSystem"`
	IsLocked    bool    `json:"isLocked"`
	IsCollapsed bool    `json:"isCollapsed"`
}

// Collection is the full ordered tag list. Tab IDs are globally unique
// within a collection; every group belongs to exactly one tag.
type Collection = []Tag

// Settings is the persisted flat configuration record.
type Settings struct {
	Language               string `json:"language"`
	Theme                  string `json:"theme"`
	CloseTabsAfterSave     bool   `json:"closeTabsAfterSave"`
	ShowCloseConfirmation  bool   `json:"showCloseConfirmation"`
	DefaultTagID           string `json:"defaultTagId"`
	VirtualScrollThreshold int    `json:"virtualScrollThreshold"`
	ShowFavicons           bool   `json:"showFavicons"`
	DisplayLimit           int    `json:"displayLimit"`
}

// DisplayLimitOptions are the allowed values for Settings.DisplayLimit.
var DisplayLimitOptions = []int{25, 50, 100, 200, 500}

// ClampDisplayLimit maps any value outside DisplayLimitOptions to the
// default limit. Persisted settings may carry values written by older
// builds or hand-edited documents.
func ClampDisplayLimit(n int) int {
	for _, opt := range DisplayLimitOptions {
		if n == opt {
			return n
		}
	}
	return DefaultSettings().DisplayLimit
}

// DefaultSettings returns the documented default settings record.
func DefaultSettings() Settings {
	return Settings{
		Language:               "en",
		Theme:                  "system",
		CloseTabsAfterSave:     true,
		ShowCloseConfirmation:  true,
		DefaultTagID:           StagingAreaID,
		VirtualScrollThreshold: 100,
		ShowFavicons:           false,
		DisplayLimit:           100,
	}
}

// MostVisitedItem is one entry of the most-visited ranking: all saved
// occurrences of one exact URL across the whole collection.
type MostVisitedItem struct {
	URL         string `json:"url"`
	Title       string `json:"title"`
	Domain      string `json:"domain"`
	FavIconURL  string `json:"favIconUrl,omitempty"`
	Count       int    `json:"count"`
	LastSavedAt string `json:"lastSavedAt"`
}

// DomainGroup aggregates all tabs sharing one domain.
type DomainGroup struct {
	Domain     string `json:"domain"`
	FavIconURL string `json:"favIconUrl,omitempty"`
	Tabs       []Tab  `json:"tabs"`
	TotalCount int    `json:"totalCount"`
}

// RankTier is one bucket over the most-visited ranking. Range is [From, To).
type RankTier struct {
	ID    string `json:"id"`
	Label string `json:"label"`
	From  int    `json:"from"`
	To    int    `json:"to"`
	Count int    `json:"count"`
}

// SessionEntry is one sidebar row per group across all tags.
type SessionEntry struct {
	TagID    string
	GroupID  string
	Label    string
	TabCount int
}

// CountInfo holds aggregate totals for the header.
type CountInfo struct {
	TagCount   int
	GroupCount int
	TabCount   int
}

// ExportData is the versioned import/export file payload.
type ExportData struct {
	Version    int       `json:"version"`
	ExportedAt string    `json:"exportedAt"`
	Tags       []Tag     `json:"tags"`
	Settings   *Settings `json:"settings,omitempty"`
}

// OpenTab is a currently open browser tab as reported by a tab source
// (live bridge or an offline session file). Handle is the browser's
// numeric tab ID, used to close the tab after saving; 0 when unknown.
type OpenTab struct {
	Handle     int
	URL        string
	Title      string
	FavIconURL string
}

// SaveResult reports the outcome of a save-snapshot operation. Handles
// lists the browser handles of the tabs actually archived so the caller
// can optionally close them.
type SaveResult struct {
	Success    bool
	SavedCount int
	GroupID    string
	Handles    []int
}

// ViewType identifies a dashboard view.
type ViewType int

const (
	ViewCompleteList ViewType = iota
	ViewMostVisited
	ViewGroupedBySite
)
