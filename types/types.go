package types

import (
	"encoding/json"
	"strconv"
	"time"
)

// DefaultLocation labels buckets whose location constraint is empty
const DefaultLocation = "DEFAULT"

// DefaultStorageClass is reported when the listing API omits a storage class
const DefaultStorageClass = "STANDARD"

// BucketRef identifies a bucket to collect
type BucketRef struct {
	Name         string
	CreationDate time.Time
}

// ObjectRecord is a single object (or object version) yielded by a bucket listing
type ObjectRecord struct {
	Key          string
	VersionID    string
	Size         int64
	StorageClass string
	Encrypted    bool
	SSEAlgorithm string
	LastModified time.Time
}

// EncryptionLabel returns the encryption breakdown key for the object
func (o ObjectRecord) EncryptionLabel() string {
	return strconv.FormatBool(o.Encrypted)
}

// Stats holds count and size for one breakdown entry
type Stats struct {
	Count int64 `json:"numberOfFiles"`
	Size  int64 `json:"sizeOfFiles"`
}

// Add folds one object of the given size into the entry
func (s *Stats) Add(size int64) {
	s.Count++
	s.Size += size
}

// BucketAggregate contains the statistics gathered for a single bucket
type BucketAggregate struct {
	Name           string           `json:"name"`
	CreationDate   time.Time        `json:"creationDate"`
	TotalObjects   int64            `json:"numberOfFiles"`
	TotalSize      int64            `json:"sizeOfFiles"`
	ModifiedDate   time.Time        `json:"modifiedDate"`
	StorageClasses map[string]Stats `json:"storageClasses"`
	Encryption     map[string]Stats `json:"encrypted"`
	Detail         *BucketDetail    `json:"detail,omitempty"`
}

// NewBucketAggregate returns an empty aggregate for the bucket
func NewBucketAggregate(ref BucketRef) *BucketAggregate {
	return &BucketAggregate{
		Name:           ref.Name,
		CreationDate:   ref.CreationDate,
		StorageClasses: make(map[string]Stats),
		Encryption:     make(map[string]Stats),
	}
}

// Observe folds an object into the aggregate. The most recent modification
// time only ever moves forward.
func (a *BucketAggregate) Observe(obj ObjectRecord) {
	a.TotalObjects++
	a.TotalSize += obj.Size

	class := obj.StorageClass
	if class == "" {
		class = DefaultStorageClass
	}
	stats := a.StorageClasses[class]
	stats.Add(obj.Size)
	a.StorageClasses[class] = stats

	label := obj.EncryptionLabel()
	stats = a.Encryption[label]
	stats.Add(obj.Size)
	a.Encryption[label] = stats

	if obj.LastModified.After(a.ModifiedDate) {
		a.ModifiedDate = obj.LastModified
	}
}

// MarshalJSON writes modifiedDate as an empty string when no object was observed
func (a BucketAggregate) MarshalJSON() ([]byte, error) {
	type plain BucketAggregate

	modified := ""
	if !a.ModifiedDate.IsZero() {
		modified = a.ModifiedDate.Format(time.RFC3339Nano)
	}

	return json.Marshal(struct {
		plain
		ModifiedDate string `json:"modifiedDate"`
	}{
		plain:        plain(a),
		ModifiedDate: modified,
	})
}

// Location returns the bucket region, or an empty string when no detail was collected
func (a *BucketAggregate) Location() string {
	if a.Detail == nil {
		return ""
	}
	return a.Detail.Location
}

// BucketDetail is the optional bucket-level metadata block
type BucketDetail struct {
	Location   string                   `json:"location"`
	Lifecycle  map[string]LifecycleRule `json:"lifecycle,omitempty"`
	Logging    LoggingStatus            `json:"logging"`
	Tags       map[string]string        `json:"tags"`
	Versioning string                   `json:"version"`
}

// LifecycleRule describes one lifecycle configuration rule
type LifecycleRule struct {
	ID          string       `json:"id"`
	Prefix      string       `json:"prefix"`
	Status      string       `json:"status"`
	Expiration  Expiration   `json:"expiration"`
	Transitions []Transition `json:"transition,omitempty"`
}

// Expiration is either a fixed date or a number of days after creation
type Expiration struct {
	Date *time.Time `json:"date"`
	Days *int32     `json:"days"`
}

// Transition moves objects to another storage class
type Transition struct {
	Date         *time.Time `json:"date,omitempty"`
	Days         *int32     `json:"days,omitempty"`
	StorageClass string     `json:"storageClass"`
}

// LoggingStatus is the server access logging configuration of a bucket
type LoggingStatus struct {
	Target string  `json:"target"`
	Prefix string  `json:"prefix"`
	Grants []Grant `json:"grants"`
}

// Grant is a target grant on the logging bucket
type Grant struct {
	Grantee    string `json:"grantee"`
	Permission string `json:"permission"`
}

// CollectConfig holds configuration for the collection of one bucket
type CollectConfig struct {
	Prefix             string
	IncludeAllVersions bool
	NamePattern        string
	NameIsRegex        bool
	IncludeDetail      bool
}

// BucketResult is the outcome of collecting one bucket. Exactly one of
// Aggregate and Err is set.
type BucketResult struct {
	Bucket    string
	Aggregate *BucketAggregate
	Err       error
}

// Failed reports whether the bucket could not be collected
func (r BucketResult) Failed() bool {
	return r.Err != nil
}

// RunResult holds one entry per requested bucket, in completion order
type RunResult []BucketResult
