package models

// SchemaVersion is the current on-disk snapshot version. The migrator stamps
// every loaded snapshot with this value after repair.
const SchemaVersion = 3

// Counters holds the monotonic id allocators, one per entity kind. Ids are
// never reused and never zero. Counters are re-derived at load time as
// max(stored counter, max existing id) to tolerate corrupted counter state.
type Counters struct {
	Users      int64 `json:"users"`
	Categories int64 `json:"categories"`
	Tags       int64 `json:"tags"`
	Posts      int64 `json:"posts"`
	Comments   int64 `json:"comments"`
	Likes      int64 `json:"likes"`
	Bookmarks  int64 `json:"bookmarks"`
	Reactions  int64 `json:"reactions"`
	Reports    int64 `json:"reports"`
	Actions    int64 `json:"actions"`
}

// Snapshot is the complete serialized state: one structured document holding
// the schema version, per-entity counters and one ordered sequence per entity
// kind. It is written whole on every mutation.
type Snapshot struct {
	SchemaVersion int                `json:"schema_version"`
	Counters      Counters           `json:"counters"`
	Users         []User             `json:"users"`
	Categories    []Category         `json:"categories"`
	Tags          []Tag              `json:"tags"`
	Posts         []Post             `json:"posts"`
	PostTags      []PostTag          `json:"post_tags"`
	Comments      []Comment          `json:"comments"`
	Likes         []Like             `json:"likes"`
	Bookmarks     []Bookmark         `json:"bookmarks"`
	Reactions     []CommentReaction  `json:"comment_reactions"`
	Reports       []Report           `json:"reports"`
	Actions       []ModerationAction `json:"moderation_actions"`
}

// NewSnapshot returns an empty current-version snapshot.
func NewSnapshot() *Snapshot {
	return &Snapshot{SchemaVersion: SchemaVersion}
}

// NextUserID allocates the next user id.
func (c *Counters) NextUserID() int64 { c.Users++; return c.Users }

// NextCategoryID allocates the next category id.
func (c *Counters) NextCategoryID() int64 { c.Categories++; return c.Categories }

// NextTagID allocates the next tag id.
func (c *Counters) NextTagID() int64 { c.Tags++; return c.Tags }

// NextPostID allocates the next post id.
func (c *Counters) NextPostID() int64 { c.Posts++; return c.Posts }

// NextCommentID allocates the next comment id.
func (c *Counters) NextCommentID() int64 { c.Comments++; return c.Comments }

// NextLikeID allocates the next like id.
func (c *Counters) NextLikeID() int64 { c.Likes++; return c.Likes }

// NextBookmarkID allocates the next bookmark id.
func (c *Counters) NextBookmarkID() int64 { c.Bookmarks++; return c.Bookmarks }

// NextReactionID allocates the next comment reaction id.
func (c *Counters) NextReactionID() int64 { c.Reactions++; return c.Reactions }

// NextReportID allocates the next report id.
func (c *Counters) NextReportID() int64 { c.Reports++; return c.Reports }

// NextActionID allocates the next moderation action id.
func (c *Counters) NextActionID() int64 { c.Actions++; return c.Actions }
