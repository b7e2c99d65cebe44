package spmv

import (
	"context"
	"errors"
	"fmt"

	"github.com/hupe1980/spmv/blobstore"
	"github.com/hupe1980/spmv/codec"
	"golang.org/x/sync/errgroup"
)

// Sink is a destination for reports.
type Sink struct {
	// Name identifies the sink in logs, e.g. "file" or "s3".
	Name string
	// Store receives the encoded report.
	Store blobstore.Store
	// Object overrides the object name. Empty uses Report.FileName.
	Object string
}

// Publish encodes report once with c and writes it to every sink
// concurrently. Uploads are bounded by the publisher slots and throttled by
// the IO limit of the resource controller given with WithResourceController.
// The first failure cancels the remaining uploads and is returned.
func Publish(ctx context.Context, report *Report, c codec.Codec, sinks []Sink, opts ...Option) error {
	if report == nil {
		return errors.New("spmv: nil report")
	}
	if c == nil {
		c = codec.Default
	}
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	for _, s := range sinks {
		if s.Store == nil {
			return fmt.Errorf("spmv: sink %q has no store", s.Name)
		}
	}

	data, err := report.Encode(c)
	if err != nil {
		return fmt.Errorf("encode report: %w", err)
	}

	g, ctx := errgroup.WithContext(ctx)
	for _, s := range sinks {
		name := s.Object
		if name == "" {
			name = report.FileName(c)
		}
		g.Go(func() error {
			err := publishOne(ctx, o.resources, s.Store, name, data)
			o.logger.LogPublish(ctx, s.Name, name, len(data), err)
			if err != nil {
				return fmt.Errorf("publish to %s: %w", s.Name, err)
			}
			return nil
		})
	}
	return g.Wait()
}

func publishOne(ctx context.Context, rc *ResourceController, store blobstore.Store, name string, data []byte) error {
	if err := rc.AcquirePublisher(ctx); err != nil {
		return err
	}
	defer rc.ReleasePublisher()

	if err := rc.AcquireIO(ctx, len(data)); err != nil {
		return err
	}
	return store.Put(ctx, name, data)
}
