package merge

import (
	"fmt"

	"github.com/aledsdavies/chronicle/core/errors"
	"github.com/aledsdavies/chronicle/core/model"
	"github.com/aledsdavies/chronicle/core/serial"
	"github.com/aledsdavies/chronicle/core/version"
)

// Engine runs chronicle's two-pass attribute merge: every attribute
// declared by the model's type is asked to produce a merged record without
// touching the model, and only once every strategy has succeeded are the
// results applied and committed. A strategy error aborts the whole merge
// with the model untouched.
type Engine struct{}

// Merge reconciles local with remote, which must describe the same entity
// key and type. local must be clean; merging a dirty Model is a merge
// failure. The merge commit's parent is local's pre-merge hash — the
// remote chain is never re-linked.
func (Engine) Merge(local *model.Model, remote *version.Version) (*version.Version, error) {
	if local.Dirty() {
		return nil, errors.NewMergeFailure("cannot merge into a dirty model").
			WithContext("key", local.Key().String())
	}
	if local.Key() != remote.Key() {
		return nil, errors.NewMergeFailure("local and remote describe different keys").
			WithContext("local_key", local.Key().String()).
			WithContext("remote_key", remote.Key().String())
	}
	if local.Type() != remote.Type() {
		return nil, errors.NewMergeFailure("local and remote describe different types").
			WithContext("local_type", local.Type()).
			WithContext("remote_type", remote.Type())
	}

	localVersion := local.Version()
	s := local.Schema()

	pending := make(map[string]*serial.Record, len(s.AttributeOrder))
	for _, name := range s.AttributeOrder {
		desc, _ := s.Descriptor(name)
		strategy := desc.Strategy
		if strategy == nil {
			strategy = LatestObject{}
		}
		rec, err := strategy.Merge(localVersion, remote, name, desc.Type)
		if err != nil {
			return nil, errors.Wrap(errors.KindMergeFailure, fmt.Sprintf("merging attribute %q", name), err)
		}
		if rec != nil {
			pending[name] = rec
		}
	}

	for name, rec := range pending {
		local.StageMerged(name, rec)
	}
	if len(pending) == 0 {
		return localVersion, nil
	}
	return local.Commit()
}
