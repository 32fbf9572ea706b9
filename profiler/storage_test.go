package profiler

import (
	"context"
	"errors"
	"iter"
	"strings"
	"sync"
	"time"

	"github.com/yourusername/s3stats/types"
)

var errNoSuchBucket = errors.New("NoSuchBucket: the specified bucket does not exist")

// fakeBucket is an in-memory bucket with injectable failures
type fakeBucket struct {
	objects  []types.ObjectRecord
	versions []types.ObjectRecord // noncurrent versions, listed only with allVersions

	// listErr is yielded after failAfter objects
	listErr   error
	failAfter int

	// delay is spent before the first object, honouring cancellation
	delay time.Duration

	location      string
	lifecycle     map[string]types.LifecycleRule
	logging       types.LoggingStatus
	tags          map[string]string
	versioning    string
	locationErr   error
	lifecycleErr  error
	loggingErr    error
	tagsErr       error
	versioningErr error
}

type fakeStorage struct {
	buckets map[string]*fakeBucket

	mu          sync.Mutex
	listCalls   int
	inFlight    int
	maxInFlight int
}

func newFakeStorage(buckets map[string]*fakeBucket) *fakeStorage {
	return &fakeStorage{buckets: buckets}
}

func (f *fakeStorage) enter() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listCalls++
	f.inFlight++
	if f.inFlight > f.maxInFlight {
		f.maxInFlight = f.inFlight
	}
}

func (f *fakeStorage) leave() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.inFlight--
}

func (f *fakeStorage) ListObjects(ctx context.Context, bucket, prefix string, allVersions bool) iter.Seq2[types.ObjectRecord, error] {
	return func(yield func(types.ObjectRecord, error) bool) {
		f.enter()
		defer f.leave()

		b, ok := f.buckets[bucket]
		if !ok {
			yield(types.ObjectRecord{}, errNoSuchBucket)
			return
		}

		if b.delay > 0 {
			select {
			case <-time.After(b.delay):
			case <-ctx.Done():
				// Stop quietly, like a lister whose consumer went away
				return
			}
		}

		objects := b.objects
		if allVersions {
			objects = append(append([]types.ObjectRecord{}, b.objects...), b.versions...)
		}

		for i, obj := range objects {
			if b.listErr != nil && i == b.failAfter {
				yield(types.ObjectRecord{}, b.listErr)
				return
			}
			if !strings.HasPrefix(obj.Key, prefix) {
				continue
			}
			if !yield(obj, nil) {
				return
			}
		}
		if b.listErr != nil && b.failAfter >= len(objects) {
			yield(types.ObjectRecord{}, b.listErr)
		}
	}
}

func (f *fakeStorage) bucket(name string) (*fakeBucket, error) {
	b, ok := f.buckets[name]
	if !ok {
		return nil, errNoSuchBucket
	}
	return b, nil
}

func (f *fakeStorage) GetBucketLocation(ctx context.Context, bucket string) (string, error) {
	b, err := f.bucket(bucket)
	if err != nil {
		return "", err
	}
	return b.location, b.locationErr
}

func (f *fakeStorage) GetBucketLifecycle(ctx context.Context, bucket string) (map[string]types.LifecycleRule, error) {
	b, err := f.bucket(bucket)
	if err != nil {
		return nil, err
	}
	if b.lifecycleErr != nil {
		return nil, b.lifecycleErr
	}
	return b.lifecycle, nil
}

func (f *fakeStorage) GetBucketLogging(ctx context.Context, bucket string) (types.LoggingStatus, error) {
	b, err := f.bucket(bucket)
	if err != nil {
		return types.LoggingStatus{}, err
	}
	return b.logging, b.loggingErr
}

func (f *fakeStorage) GetBucketTags(ctx context.Context, bucket string) (map[string]string, error) {
	b, err := f.bucket(bucket)
	if err != nil {
		return nil, err
	}
	if b.tagsErr != nil {
		return nil, b.tagsErr
	}
	return b.tags, nil
}

func (f *fakeStorage) GetBucketVersioning(ctx context.Context, bucket string) (string, error) {
	b, err := f.bucket(bucket)
	if err != nil {
		return "", err
	}
	return b.versioning, b.versioningErr
}

var _ Storage = (*fakeStorage)(nil)

func obj(key string, size int64, class string, encrypted bool, modified time.Time) types.ObjectRecord {
	return types.ObjectRecord{
		Key:          key,
		Size:         size,
		StorageClass: class,
		Encrypted:    encrypted,
		LastModified: modified,
	}
}
