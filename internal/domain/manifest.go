package domain

// ManifestEntry is one row of an image manifest, either recorded earlier or
// discovered on disk. Ids stay textual so that manifests written by other
// tools reconcile without conversion.
type ManifestEntry struct {
	ImageID string
	HotelID string
	Path    string

	// set by a filesystem scan
	Width, Height int
	SizeBytes     int64
	TakenAt       string // EXIF DateTime, if any
	CameraModel   string
}

type ReconcileStatus string

const (
	StatusOK      ReconcileStatus = "OK"
	StatusMoved   ReconcileStatus = "MOVED"
	StatusMissing ReconcileStatus = "MISSING"
)

type ReconciledEntry struct {
	ManifestEntry
	Status       ReconcileStatus
	PreviousPath string // only for StatusMoved
}

// TaggedImage is the tagger's output for one image, tags ranked by confidence.
type TaggedImage struct {
	ImageID int64
	Tags    []ImageTag
}
