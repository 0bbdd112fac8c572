package witimport

import (
	stderrors "errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"go.bytecodealliance.org/wit"
	"go.uber.org/zap"

	"github.com/wippyai/typegraph/errors"
	"github.com/wippyai/typegraph/types"
	"github.com/wippyai/typegraph/witimport/internal/layout"
)

// Options configures the import.
type Options struct {
	// StringElem names the Basic type string data pointers point to.
	StringElem string
	// PointerSize is the linear memory pointer width in bytes used for
	// string and list data pointers.
	PointerSize uint32
}

// DefaultOptions returns the wasm32 configuration.
func DefaultOptions() Options {
	return Options{
		PointerSize: 4,
		StringElem:  "u8",
	}
}

var errUnsupported = &errors.Error{Phase: errors.PhaseImport, Kind: errors.KindUnsupported}

// Load reads a WIT resolve in JSON form (as printed by
// "wasm-tools component wit -j") and imports every type definition into a
// new frozen repository.
func Load(path string, opts Options) (*types.Repository, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Load("open "+path, err)
	}
	defer f.Close()

	res, err := wit.DecodeJSON(f)
	if err != nil {
		return nil, errors.ParseFailed("wit json "+path, err)
	}
	return Import(res, opts)
}

// Import converts every type definition of res into a new frozen
// repository. Definitions of unsupported kinds are skipped with a warning.
func Import(res *wit.Resolve, opts Options) (*types.Repository, error) {
	if res == nil {
		return nil, errors.InvalidInput(errors.PhaseImport, "nil resolve")
	}

	repo := types.NewRepository()
	im := New(repo, opts)
	for _, td := range res.TypeDefs {
		if _, err := im.ImportType(td); err != nil {
			if stderrors.Is(err, errUnsupported) {
				Logger().Warn("skipped type definition",
					zap.String("name", typeName(td)),
					zap.Error(err))
				continue
			}
			return nil, wrap(err, typeName(td))
		}
	}

	if err := repo.Freeze(); err != nil {
		return nil, err
	}
	Logger().Debug("imported wit resolve",
		zap.Int("typedefs", len(res.TypeDefs)),
		zap.Int("nodes", repo.Len()))
	return repo, nil
}

// Importer converts WIT types into nodes of one repository, reusing the
// node of every type definition and primitive it has already converted.
// Not safe for concurrent use.
type Importer struct {
	repo     *types.Repository
	calc     *layout.Calculator
	defs     map[*wit.TypeDef]types.Type
	basics   map[string]types.Type
	pointers map[types.Type]types.Type
	str      types.Type
	opts     Options
}

// New creates an importer adding to repo.
func New(repo *types.Repository, opts Options) *Importer {
	if opts.PointerSize == 0 {
		opts.PointerSize = 4
	}
	if opts.StringElem == "" {
		opts.StringElem = "u8"
	}
	return &Importer{
		repo:     repo,
		calc:     layout.NewCalculator(opts.PointerSize),
		defs:     make(map[*wit.TypeDef]types.Type),
		basics:   make(map[string]types.Type),
		pointers: make(map[types.Type]types.Type),
		opts:     opts,
	}
}

// Repository returns the repository being filled.
func (im *Importer) Repository() *types.Repository {
	return im.repo
}

// ImportType converts t, and every type it references, into the repository.
func (im *Importer) ImportType(t wit.Type) (types.Type, error) {
	switch typ := t.(type) {
	case nil:
		return types.Type{}, errors.InvalidInput(errors.PhaseImport, "nil type")
	case wit.String:
		if im.str.IsValid() {
			return im.str, nil
		}
		elem, err := im.basic(im.opts.StringElem, 1)
		if err != nil {
			return types.Type{}, err
		}
		str, err := im.slice("string", elem)
		if err != nil {
			return types.Type{}, err
		}
		im.str = str
		return str, nil
	case *wit.TypeDef:
		return im.typeDef(typ)
	}

	name, ok := primitiveName(t)
	if !ok {
		return types.Type{}, errors.Unsupported(errors.PhaseImport, fmt.Sprintf("type %T", t))
	}
	return im.basic(name, uint64(im.calc.Calculate(t).Size))
}

func (im *Importer) typeDef(td *wit.TypeDef) (types.Type, error) {
	if t, ok := im.defs[td]; ok {
		return t, nil
	}

	name := typeName(td)
	info := im.calc.Calculate(td)
	size := uint64(info.Size)

	var (
		t   types.Type
		err error
	)
	switch kind := td.Kind.(type) {
	case *wit.Record:
		members := make([]member, len(kind.Fields))
		for i, f := range kind.Fields {
			members[i] = member{f.Name, f.Type, info.Offsets[i]}
		}
		t, err = im.aggregate(name, size, nil, members)

	case *wit.Tuple:
		members := make([]member, len(kind.Types))
		for i, et := range kind.Types {
			members[i] = member{strconv.Itoa(i), et, info.Offsets[i]}
		}
		t, err = im.aggregate(name, size, nil, members)

	case *wit.Variant:
		members := make([]member, len(kind.Cases))
		for i, c := range kind.Cases {
			members[i] = member{c.Name, c.Type, info.Payload}
		}
		t, err = im.union(name, size, len(kind.Cases), members)

	case *wit.Option:
		t, err = im.union(name, size, 2, []member{
			{"some", kind.Type, info.Payload},
		})

	case *wit.Result:
		t, err = im.union(name, size, 2, []member{
			{"ok", kind.OK, info.Payload},
			{"err", kind.Err, info.Payload},
		})

	case *wit.Enum:
		t, err = im.repo.AddBasic(name, size)

	case *wit.Flags:
		t, err = im.flags(name, size, kind)

	case *wit.List:
		var elem types.Type
		if elem, err = im.ImportType(kind.Type); err != nil {
			err = wrap(err, "<elem>")
			break
		}
		t, err = im.slice(name, elem)

	case *wit.Resource:
		t, err = im.repo.AddUserDefined(name, 0, nil)

	case *wit.Own:
		t, err = im.handle(kind.Type, types.FlagNone, name)

	case *wit.Borrow:
		t, err = im.handle(kind.Type, types.FlagConst, name)

	case wit.Type:
		// alias: the definition is its target
		t, err = im.ImportType(kind)

	default:
		err = errors.Unsupported(errors.PhaseImport, fmt.Sprintf("type definition kind %T", td.Kind))
	}
	if err != nil {
		te := importError(err)
		if te.TypeName == "" {
			te.TypeName = name
		}
		return types.Type{}, te
	}

	im.defs[td] = t
	Logger().Debug("imported type",
		zap.String("name", name),
		zap.Stringer("kind", t.Kind()),
		zap.Uint64("size", t.Size()))
	return t, nil
}

// member is a named, positioned constituent of an aggregate. A nil typ
// carries no data.
type member struct {
	name   string
	typ    wit.Type
	offset uint32
}

// aggregate imports the member types and builds a user-defined type whose
// fields follow the given leading fields.
func (im *Importer) aggregate(name string, size uint64, lead []types.Field, members []member) (types.Type, error) {
	fields := append(make([]types.Field, 0, len(lead)+len(members)), lead...)
	for _, m := range members {
		if m.typ == nil {
			continue
		}
		ft, err := im.ImportType(m.typ)
		if err != nil {
			return types.Type{}, wrap(err, m.name)
		}
		fields = append(fields, types.Field{Name: m.name, Offset: uint64(m.offset), Type: ft})
	}
	return im.repo.AddUserDefined(name, size, fields)
}

// union lays out a tag at offset 0 followed by every case payload at the
// shared payload offset. Cases without a payload add no field.
func (im *Importer) union(name string, size uint64, numCases int, cases []member) (types.Type, error) {
	disc, err := im.discriminant(numCases)
	if err != nil {
		return types.Type{}, err
	}
	tag := types.Field{Name: "tag", Offset: 0, Type: disc}
	return im.aggregate(name, size, []types.Field{tag}, cases)
}

// flags maps every flag to a one-bit Bitfield inside its storage unit.
func (im *Importer) flags(name string, size uint64, f *wit.Flags) (types.Type, error) {
	unit := layout.FlagUnit(len(f.Flags))
	perUnit := int(unit) * 8

	fields := make([]types.Field, len(f.Flags))
	for i, flag := range f.Flags {
		bit, err := im.repo.AddBitfield(flag.Name, uint64(unit), 1, uint32(i%perUnit))
		if err != nil {
			return types.Type{}, err
		}
		fields[i] = types.Field{
			Name:   flag.Name,
			Offset: uint64(i/perUnit) * uint64(unit),
			Type:   bit,
		}
	}
	return im.repo.AddUserDefined(name, size, fields)
}

// slice builds the (ptr, len) aggregate of strings and lists.
func (im *Importer) slice(name string, elem types.Type) (types.Type, error) {
	ptr, err := im.pointer(elem)
	if err != nil {
		return types.Type{}, err
	}
	length, err := im.basic("u32", 4)
	if err != nil {
		return types.Type{}, err
	}
	info := im.calc.Calculate(wit.String{})
	return im.repo.AddUserDefined(name, uint64(info.Size), []types.Field{
		{Name: "ptr", Offset: uint64(info.Offsets[0]), Type: ptr},
		{Name: "len", Offset: uint64(info.Offsets[1]), Type: length},
	})
}

func (im *Importer) handle(resource *wit.TypeDef, flags types.Flags, name string) (types.Type, error) {
	if resource == nil {
		return types.Type{}, errors.InvalidData(errors.PhaseImport, nil, "handle without resource")
	}
	target, err := im.typeDef(resource)
	if err != nil {
		return types.Type{}, wrap(err, "<resource>")
	}
	return im.repo.AddPointer(name, 4, flags, target)
}

func (im *Importer) pointer(elem types.Type) (types.Type, error) {
	if p, ok := im.pointers[elem]; ok {
		return p, nil
	}
	p, err := im.repo.AddPointer(elem.Name()+"*", uint64(im.opts.PointerSize), types.FlagNone, elem)
	if err != nil {
		return types.Type{}, err
	}
	im.pointers[elem] = p
	return p, nil
}

func (im *Importer) discriminant(numCases int) (types.Type, error) {
	switch size := layout.DiscriminantSize(numCases); size {
	case 1:
		return im.basic("u8", 1)
	case 2:
		return im.basic("u16", 2)
	default:
		return im.basic("u32", 4)
	}
}

// basic returns the shared Basic node for a primitive.
func (im *Importer) basic(name string, size uint64) (types.Type, error) {
	if t, ok := im.basics[name]; ok {
		return t, nil
	}
	t, err := im.repo.AddBasic(name, size)
	if err != nil {
		return types.Type{}, importError(err)
	}
	im.basics[name] = t
	return t, nil
}

// wrap prepends segment to the path of an import error.
func wrap(err error, segment string) error {
	te := importError(err)
	te.Path = append([]string{segment}, te.Path...)
	return te
}

// importError returns err as an import-phase *errors.Error, wrapping errors
// from other phases as their cause.
func importError(err error) *errors.Error {
	var te *errors.Error
	if stderrors.As(err, &te) && te.Phase == errors.PhaseImport {
		return te
	}
	return errors.Wrap(errors.PhaseImport, errors.KindInvalidData, err, "cannot build type")
}

func primitiveName(t wit.Type) (string, bool) {
	switch t.(type) {
	case wit.Bool:
		return "bool", true
	case wit.S8:
		return "s8", true
	case wit.U8:
		return "u8", true
	case wit.S16:
		return "s16", true
	case wit.U16:
		return "u16", true
	case wit.S32:
		return "s32", true
	case wit.U32:
		return "u32", true
	case wit.S64:
		return "s64", true
	case wit.U64:
		return "u64", true
	case wit.F32:
		return "f32", true
	case wit.F64:
		return "f64", true
	case wit.Char:
		return "char", true
	case wit.String:
		return "string", true
	}
	return "", false
}

// typeName is the declared name of a definition, or a WIT-syntax name such
// as "list<u8>" for anonymous ones.
func typeName(t wit.Type) string {
	if name, ok := primitiveName(t); ok {
		return name
	}
	td, ok := t.(*wit.TypeDef)
	if !ok || td == nil {
		return "<unknown>"
	}
	if td.Name != nil {
		return *td.Name
	}

	switch kind := td.Kind.(type) {
	case *wit.List:
		return "list<" + typeName(kind.Type) + ">"
	case *wit.Option:
		return "option<" + typeName(kind.Type) + ">"
	case *wit.Result:
		switch {
		case kind.OK == nil && kind.Err == nil:
			return "result"
		case kind.Err == nil:
			return "result<" + typeName(kind.OK) + ">"
		case kind.OK == nil:
			return "result<_, " + typeName(kind.Err) + ">"
		}
		return "result<" + typeName(kind.OK) + ", " + typeName(kind.Err) + ">"
	case *wit.Tuple:
		names := make([]string, len(kind.Types))
		for i, et := range kind.Types {
			names[i] = typeName(et)
		}
		return "tuple<" + strings.Join(names, ", ") + ">"
	case *wit.Own:
		return "own<" + typeName(kind.Type) + ">"
	case *wit.Borrow:
		return "borrow<" + typeName(kind.Type) + ">"
	case wit.Type:
		return typeName(kind)
	case *wit.Record:
		return "record"
	case *wit.Variant:
		return "variant"
	case *wit.Enum:
		return "enum"
	case *wit.Flags:
		return "flags"
	case *wit.Resource:
		return "resource"
	}
	return "<unknown>"
}
