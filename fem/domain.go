package fem

import (
	femerr "github.com/notargets/FEMAssembly/errors"
)

// entity is one integration entity with its gathered geometry
type entity[U Real] struct {
	pos   int
	cells []int32
	local []int32 // nil for cells
	x     []U
}

// domain iterates the active entities of one integral, reusing its scratch buffers
type domain[T Scalar, U Real] struct {
	form     *Form[T, U]
	key      IntegralKey
	integral *Integral[T, U]

	cells [2]int32
	local [2]int32
	x     []U
}

func newDomain[T Scalar, U Real](op femerr.Op, f *Form[T, U], key IntegralKey) (*domain[T, U], error) {
	in := f.Integral(key)
	if in == nil {
		return nil, femerr.New(op, femerr.KindInvalidArgument).Integral(key.String()).
			Detail("form has no such integral").Build()
	}
	return &domain[T, U]{form: f, key: key, integral: in}, nil
}

// size is the number of active entities
func (d *domain[T, U]) size() int { return d.integral.NumEntities(d.key.Type) }

// at gathers the entity at position p
func (d *domain[T, U]) at(p int) entity[U] {
	stride := d.key.Type.Stride()
	e := d.integral.Entities[p*stride : (p+1)*stride]
	ent := entity[U]{pos: p}
	switch d.key.Type {
	case Cell:
		d.cells[0] = e[0]
		ent.cells = d.cells[:1]
	case ExteriorFacet:
		d.cells[0], d.local[0] = e[0], e[1]
		ent.cells, ent.local = d.cells[:1], d.local[:1]
	case InteriorFacet:
		d.cells[0], d.local[0], d.cells[1], d.local[1] = e[0], e[1], e[2], e[3]
		ent.cells, ent.local = d.cells[:2], d.local[:2]
	}
	d.x = d.x[:0]
	for _, c := range ent.cells {
		d.x = d.form.mesh.AppendCoordinateDofs(d.x, c)
	}
	ent.x = d.x
	return ent
}

// each calls visit for the selected positions (all when positions is nil) in order
func (d *domain[T, U]) each(op femerr.Op, positions []int, visit func(e entity[U]) error) error {
	n := d.size()
	if positions == nil {
		for p := 0; p < n; p++ {
			if err := visit(d.at(p)); err != nil {
				return err
			}
		}
		return nil
	}
	for _, p := range positions {
		if p < 0 || p >= n {
			return femerr.New(op, femerr.KindInvalidArgument).Integral(d.key.String()).Entity(p).
				Detail("entity position outside [0, %d)", n).Build()
		}
		if err := visit(d.at(p)); err != nil {
			return err
		}
	}
	return nil
}

// coefficientsFor returns the packed coefficient view of key, checking it covers the integral
func coefficientsFor[T Scalar, U Real](op femerr.Op, f *Form[T, U], key IntegralKey, coeffs Coefficients[T]) (PackedCoefficients[T], error) {
	pc, ok := coeffs[key]
	width := f.CoefficientOffsets()[len(f.coefficients)] * key.Type.NumCells()
	if !ok {
		if width == 0 || f.NumEntities(key) == 0 {
			return PackedCoefficients[T]{Stride: width}, nil
		}
		return pc, femerr.New(op, femerr.KindInvalidArgument).Integral(key.String()).
			Detail("no packed coefficients").Build()
	}
	if pc.Stride != width || len(pc.Data) < f.NumEntities(key)*pc.Stride {
		return pc, femerr.New(op, femerr.KindInvalidArgument).Integral(key.String()).
			Detail("packed coefficients have stride %d and length %d, expected stride %d for %d entities",
				pc.Stride, len(pc.Data), width, f.NumEntities(key)).Build()
	}
	return pc, nil
}

// tabulate zeroes A and evaluates kernel k into it
func tabulate[T Scalar, U Real](k Kernel[T, U], A, w, c []T, x []U, local []int32) {
	clear(A)
	k(A, w, c, x, local)
}

// appendEntityDofs appends the unrolled dofs of every cell of the entity
func appendEntityDofs(dst []int32, dm *DofMap, cells []int32) []int32 {
	for _, c := range cells {
		dst = dm.AppendUnrolled(dst, c)
	}
	return dst
}

// checkDofmapCovers verifies the dofmap is defined on every cell referenced by the entities
func checkDofmapCovers[T Scalar, U Real](op femerr.Op, f *Form[T, U], key IntegralKey, dm *DofMap) error {
	entities := f.Entities(key)
	stride := key.Type.Stride()
	for p := 0; p*stride < len(entities); p++ {
		for k := 0; k < key.Type.NumCells(); k++ {
			if c := entities[p*stride+2*k]; int(c) >= dm.NumCells() {
				return femerr.New(op, femerr.KindInvalidArgument).Integral(key.String()).Entity(p).
					Detail("cell %d is outside the argument dofmap", c).Build()
			}
		}
	}
	return nil
}
