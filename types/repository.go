package types

import (
	"iter"
	"math"
	"sync/atomic"

	"github.com/hashicorp/go-set/v3"
	"go.uber.org/zap"

	"github.com/wippyai/typegraph/errors"
)

// Options configures a Repository.
type Options struct {
	// BitsPerUnit is the number of bits in one storage unit, used to bound
	// bitfields. 0 means 8.
	BitsPerUnit uint32
}

// DefaultOptions returns the default repository configuration.
func DefaultOptions() Options {
	return Options{
		BitsPerUnit: 8,
	}
}

// Repository is the arena owning every type node of one analysis pass.
//
// Nodes are appended and never removed; references between nodes are TypeIDs
// into the same arena, so cycles need no special handling when the
// Repository is dropped. Construction is single-goroutine. After Freeze the
// repository is read-only and safe for concurrent queries.
type Repository struct {
	byName  map[string][]TypeID
	nodes   []node
	pending int
	options Options
	frozen  atomic.Bool
}

// NewRepository creates an empty repository with default options.
func NewRepository() *Repository {
	return NewRepositoryWithOptions(DefaultOptions())
}

// NewRepositoryWithOptions creates an empty repository.
func NewRepositoryWithOptions(opts Options) *Repository {
	if opts.BitsPerUnit == 0 {
		opts.BitsPerUnit = 8
	}
	return &Repository{
		byName:  make(map[string][]TypeID),
		options: opts,
	}
}

// Options returns the configuration.
func (r *Repository) Options() Options {
	return r.options
}

// AddBasic creates a leaf type.
func (r *Repository) AddBasic(name string, size uint64) (Type, error) {
	if err := r.checkMutable(name); err != nil {
		return Type{}, err
	}
	return r.insert(node{kind: KindBasic, name: name, size: size, complete: true}), nil
}

// AddBitfield creates a bitfield type. The bits must fit within size storage
// units.
func (r *Repository) AddBitfield(name string, size uint64, bitLength, bitOffset uint32) (Type, error) {
	if err := r.checkMutable(name); err != nil {
		return Type{}, err
	}

	end := uint64(bitLength) + uint64(bitOffset)
	bpu := uint64(r.options.BitsPerUnit)
	if size <= math.MaxUint64/bpu && end > size*bpu {
		return Type{}, r.reject(name, errors.Overflow(errors.PhaseBuild, name, end, size*bpu))
	}

	return r.insert(node{
		kind:      KindBitfield,
		name:      name,
		size:      size,
		bitLength: bitLength,
		bitOffset: bitOffset,
		complete:  true,
	}), nil
}

// AddPointer creates a pointer type. The pointee must already exist in r.
func (r *Repository) AddPointer(name string, size uint64, flags Flags, pointee Type) (Type, error) {
	if err := r.checkMutable(name); err != nil {
		return Type{}, err
	}
	if err := r.checkFlags(name, flags, name); err != nil {
		return Type{}, err
	}
	if err := r.checkRef(pointee, name, "<pointee>"); err != nil {
		return Type{}, err
	}

	return r.insert(node{
		kind:     KindPointer,
		name:     name,
		size:     size,
		flags:    flags,
		pointee:  pointee.id,
		complete: true,
	}), nil
}

// AddUserDefined creates a complete user-defined type. Every field type must
// already exist in r.
func (r *Repository) AddUserDefined(name string, size uint64, fields []Field) (Type, error) {
	if err := r.checkMutable(name); err != nil {
		return Type{}, err
	}
	data, err := r.fieldData(name, fields)
	if err != nil {
		return Type{}, err
	}

	return r.insert(node{
		kind:     KindUserDefined,
		name:     name,
		size:     size,
		fields:   data,
		complete: true,
	}), nil
}

// DeclareUserDefined creates a user-defined type whose field list is set
// later by CompleteUserDefined. The declared type can be referenced
// immediately, which is how self-referential structures are built.
func (r *Repository) DeclareUserDefined(name string, size uint64) (Type, error) {
	if err := r.checkMutable(name); err != nil {
		return Type{}, err
	}
	r.pending++
	return r.insert(node{kind: KindUserDefined, name: name, size: size}), nil
}

// CompleteUserDefined sets the field list of a declared user-defined type.
// It can be called once per declaration.
func (r *Repository) CompleteUserDefined(t Type, fields []Field) error {
	name := t.Name()
	if err := r.checkMutable(name); err != nil {
		return err
	}
	if err := r.checkRef(t, name); err != nil {
		return err
	}

	n := t.node()
	if n.kind != KindUserDefined {
		return r.reject(name, errors.New(errors.PhaseBuild, errors.KindKindMismatch).
			TypeName(name).
			Detail("cannot complete a %s type", n.kind).
			Build())
	}
	if n.complete {
		return r.reject(name, errors.New(errors.PhaseBuild, errors.KindAlreadyDefined).
			TypeName(name).
			Detail("field list already set").
			Build())
	}

	data, err := r.fieldData(name, fields)
	if err != nil {
		return err
	}
	n.fields = data
	n.complete = true
	r.pending--
	return nil
}

// Freeze publishes the graph for querying. It fails if any declared type is
// still incomplete. Freezing twice is a no-op.
func (r *Repository) Freeze() error {
	if r.frozen.Load() {
		return nil
	}
	if r.pending > 0 {
		var names []string
		for i := range r.nodes {
			if !r.nodes[i].complete {
				names = append(names, r.nodes[i].name)
			}
		}
		return errors.NewIncompleteError(names)
	}

	r.frozen.Store(true)
	Logger().Debug("repository frozen",
		zap.Int("types", len(r.nodes)),
		zap.Int("names", len(r.byName)))
	return nil
}

// Frozen reports whether Freeze has succeeded.
func (r *Repository) Frozen() bool {
	return r.frozen.Load()
}

// Len returns the number of nodes.
func (r *Repository) Len() int {
	return len(r.nodes)
}

// Lookup returns the node with the given ID.
func (r *Repository) Lookup(id TypeID) (Type, bool) {
	t := Type{repo: r, id: id}
	if !t.IsValid() {
		return Type{}, false
	}
	return t, true
}

// Get is like Lookup but returns a query error for unknown IDs.
func (r *Repository) Get(id TypeID) (Type, error) {
	t, ok := r.Lookup(id)
	if !ok {
		return Type{}, errors.OutOfBounds(errors.PhaseQuery, nil, int(id), len(r.nodes))
	}
	return t, nil
}

// LookupName returns every node with the given name in insertion order.
func (r *Repository) LookupName(name string) []Type {
	ids := r.byName[name]
	if len(ids) == 0 {
		return nil
	}
	result := make([]Type, len(ids))
	for i, id := range ids {
		result[i] = Type{repo: r, id: id}
	}
	return result
}

// First returns the first node inserted under name.
func (r *Repository) First(name string) (Type, error) {
	ids := r.byName[name]
	if len(ids) == 0 {
		return Type{}, errors.NotFound(errors.PhaseQuery, "type", name)
	}
	return Type{repo: r, id: ids[0]}, nil
}

// Names returns the distinct type names in first-insertion order.
func (r *Repository) Names() []string {
	seen := set.New[string](len(r.byName))
	names := make([]string, 0, len(r.byName))
	for i := range r.nodes {
		if name := r.nodes[i].name; seen.Insert(name) {
			names = append(names, name)
		}
	}
	return names
}

// All iterates over every node in insertion order.
func (r *Repository) All() iter.Seq[Type] {
	return func(yield func(Type) bool) {
		for i := range r.nodes {
			if !yield(Type{repo: r, id: TypeID(i + 1)}) {
				return
			}
		}
	}
}

func (r *Repository) insert(n node) Type {
	r.nodes = append(r.nodes, n)
	id := TypeID(len(r.nodes))
	r.byName[n.name] = append(r.byName[n.name], id)
	return Type{repo: r, id: id}
}

func (r *Repository) checkMutable(name string) error {
	if r.frozen.Load() {
		return r.reject(name, errors.Frozen(errors.PhaseBuild, name))
	}
	return nil
}

func (r *Repository) checkRef(t Type, path ...string) error {
	if t.repo != nil && t.repo != r {
		return r.reject(path[0], errors.ForeignReference(errors.PhaseBuild, path, t.Name()))
	}
	if !t.IsValid() {
		return r.reject(path[0], errors.New(errors.PhaseBuild, errors.KindInvalidInput).
			Path(path...).
			Detail("reference to an unknown type (id %d)", t.id).
			Build())
	}
	return nil
}

func (r *Repository) checkFlags(name string, flags Flags, path ...string) error {
	if flags&^flagMask != 0 {
		return r.reject(name, errors.New(errors.PhaseBuild, errors.KindInvalidInput).
			Path(path...).
			Value(flags).
			Detail("unknown qualifier bits %#x", uint8(flags&^flagMask)).
			Build())
	}
	return nil
}

func (r *Repository) fieldData(name string, fields []Field) ([]fieldData, error) {
	data := make([]fieldData, len(fields))
	for i, f := range fields {
		if err := r.checkFlags(name, f.Flags, name, f.Name); err != nil {
			return nil, err
		}
		if err := r.checkRef(f.Type, name, f.Name); err != nil {
			return nil, err
		}
		data[i] = fieldData{
			name:   f.Name,
			offset: f.Offset,
			flags:  f.Flags,
			typ:    f.Type.id,
		}
	}
	return data, nil
}

func (r *Repository) reject(name string, err error) error {
	Logger().Debug("type rejected", zap.String("name", name), zap.Error(err))
	return err
}
