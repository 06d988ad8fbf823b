package catalog

import (
	"github.com/gogo/protobuf/proto"
	"github.com/pkg/errors"

	"github.com/andrewjohnlowe/EnergyFlow/goef"
)

// Tables are stored as flat varint streams.  Counts and non-negative values
// are plain varints; spec cells are zigzag encoded since composite rows carry
// -1 sentinels.

func appendVarint(buf []byte, v uint64) []byte {
	return append(buf, proto.EncodeVarint(v)...)
}

func appendZigzag(buf []byte, v int64) []byte {
	return appendVarint(buf, uint64(v<<1)^uint64(v>>63))
}

type decoder struct {
	buf []byte
}

func (d *decoder) varint() (uint64, error) {
	x, n := proto.DecodeVarint(d.buf)
	if n == 0 {
		return 0, errors.Wrap(goef.ErrBadEncoding, "truncated varint")
	}
	d.buf = d.buf[n:]
	return x, nil
}

func (d *decoder) zigzag() (int64, error) {
	x, err := d.varint()
	return int64(x>>1) ^ -int64(x&1), err
}

func encodeSpecs(buf []byte, specs []goef.Spec) []byte {
	buf = appendVarint(buf, uint64(len(specs)))
	for _, spec := range specs {
		for _, cell := range spec {
			buf = appendZigzag(buf, cell)
		}
	}
	return buf
}

func decodeSpecs(val []byte) ([]goef.Spec, error) {
	d := decoder{val}
	count, err := d.varint()
	if err != nil || count == 0 {
		return nil, err
	}
	specs := make([]goef.Spec, count)
	for i := range specs {
		for j := range specs[i] {
			if specs[i][j], err = d.zigzag(); err != nil {
				return nil, err
			}
		}
	}
	return specs, nil
}

func encodeStrings(buf []byte, strs []string) []byte {
	buf = appendVarint(buf, uint64(len(strs)))
	for _, s := range strs {
		buf = appendVarint(buf, uint64(len(s)))
		buf = append(buf, s...)
	}
	return buf
}

func decodeStrings(val []byte) ([]string, error) {
	d := decoder{val}
	count, err := d.varint()
	if err != nil || count == 0 {
		return nil, err
	}
	strs := make([]string, count)
	for i := range strs {
		size, err := d.varint()
		if err != nil {
			return nil, err
		}
		if uint64(len(d.buf)) < size {
			return nil, errors.Wrap(goef.ErrBadEncoding, "truncated string")
		}
		strs[i] = string(d.buf[:size])
		d.buf = d.buf[size:]
	}
	return strs, nil
}

func encodeEdgeLists(buf []byte, lists []goef.EdgeList) []byte {
	buf = appendVarint(buf, uint64(len(lists)))
	for _, edges := range lists {
		buf = appendVarint(buf, uint64(len(edges)))
		for _, edge := range edges {
			buf = appendVarint(buf, uint64(edge[0]))
			buf = appendVarint(buf, uint64(edge[1]))
		}
	}
	return buf
}

func decodeEdgeLists(val []byte) ([]goef.EdgeList, error) {
	d := decoder{val}
	count, err := d.varint()
	if err != nil || count == 0 {
		return nil, err
	}
	lists := make([]goef.EdgeList, count)
	for i := range lists {
		size, err := d.varint()
		if err != nil {
			return nil, err
		}
		edges := make(goef.EdgeList, size)
		for j := range edges {
			a, err := d.varint()
			if err != nil {
				return nil, err
			}
			b, err := d.varint()
			if err != nil {
				return nil, err
			}
			edges[j] = goef.Edge{int(a), int(b)}
		}
		lists[i] = edges
	}
	return lists, nil
}

func encodeWeights(buf []byte, lists [][]int64) []byte {
	buf = appendVarint(buf, uint64(len(lists)))
	for _, weights := range lists {
		buf = appendVarint(buf, uint64(len(weights)))
		for _, w := range weights {
			buf = appendVarint(buf, uint64(w))
		}
	}
	return buf
}

func decodeWeights(val []byte) ([][]int64, error) {
	d := decoder{val}
	count, err := d.varint()
	if err != nil || count == 0 {
		return nil, err
	}
	lists := make([][]int64, count)
	for i := range lists {
		size, err := d.varint()
		if err != nil {
			return nil, err
		}
		weights := make([]int64, size)
		for j := range weights {
			w, err := d.varint()
			if err != nil {
				return nil, err
			}
			weights[j] = int64(w)
		}
		lists[i] = weights
	}
	return lists, nil
}

func encodeEinpaths(buf []byte, paths [][][2]int) []byte {
	buf = appendVarint(buf, uint64(len(paths)))
	for _, path := range paths {
		buf = appendVarint(buf, uint64(len(path)))
		for _, step := range path {
			buf = appendVarint(buf, uint64(step[0]))
			buf = appendVarint(buf, uint64(step[1]))
		}
	}
	return buf
}

func decodeEinpaths(val []byte) ([][][2]int, error) {
	d := decoder{val}
	count, err := d.varint()
	if err != nil || count == 0 {
		return nil, err
	}
	paths := make([][][2]int, count)
	for i := range paths {
		size, err := d.varint()
		if err != nil {
			return nil, err
		}
		path := make([][2]int, size)
		for j := range path {
			a, err := d.varint()
			if err != nil {
				return nil, err
			}
			b, err := d.varint()
			if err != nil {
				return nil, err
			}
			path[j] = [2]int{int(a), int(b)}
		}
		paths[i] = path
	}
	return paths, nil
}

func encodeFormulae(buf []byte, formulae []goef.Formula) []byte {
	buf = appendVarint(buf, uint64(len(formulae)))
	for _, formula := range formulae {
		buf = appendVarint(buf, uint64(len(formula)))
		for _, ndk := range formula {
			for _, v := range ndk {
				buf = appendVarint(buf, uint64(v))
			}
		}
	}
	return buf
}

func decodeFormulae(val []byte) ([]goef.Formula, error) {
	d := decoder{val}
	count, err := d.varint()
	if err != nil || count == 0 {
		return nil, err
	}
	formulae := make([]goef.Formula, count)
	for i := range formulae {
		size, err := d.varint()
		if err != nil {
			return nil, err
		}
		formula := make(goef.Formula, size)
		for j := range formula {
			for m := 0; m < 3; m++ {
				v, err := d.varint()
				if err != nil {
					return nil, err
				}
				formula[j][m] = int64(v)
			}
		}
		formulae[i] = formula
	}
	return formulae, nil
}
