package bser

import "bytes"

// decodeValue decodes the value at the start of b. depth is the number of
// containers already open around it.
func (r *Reader) decodeValue(b []byte, depth int) (Value, []byte, error) {
	if len(b) < 1 {
		return Value{}, b, ErrShortBytes
	}

	switch b[0] {
	case tagInt8, tagInt16, tagInt32, tagInt64:
		i, o, err := readIntCore(b, r.order)
		if err != nil {
			return Value{}, b, r.rebase(err, b)
		}
		return Int(i), o, nil
	case tagReal:
		f, o, err := readRealCore(b, r.order)
		if err != nil {
			return Value{}, b, err
		}
		return Real(f), o, nil
	case tagTrue:
		return Bool(true), b[1:], nil
	case tagFalse:
		return Bool(false), b[1:], nil
	case tagNull:
		return Null(), b[1:], nil
	case tagString:
		s, o, err := r.readBytestring(b)
		if err != nil {
			return Value{}, b, err
		}
		return Bytestring(s), o, nil
	case tagArray:
		return r.decodeArray(b, depth+1)
	case tagObject:
		return r.decodeObject(b, depth+1)
	case tagTemplate:
		return r.decodeTemplate(b, depth+1)
	}
	return Value{}, b, UnknownTagError{Tag: b[0], Offset: r.offset(b)}
}

func (r *Reader) checkDepth(depth int) error {
	if r.maxDepth > 0 && depth > r.maxDepth {
		return ErrMaxDepthExceeded
	}
	return nil
}

func (r *Reader) decodeArray(b []byte, depth int) (Value, []byte, error) {
	if err := r.checkDepth(depth); err != nil {
		return Value{}, b, err
	}
	n, o, err := readCountCore(b, tagArray, r.order, r.maxContainer, minArrayElemSize)
	if err != nil {
		return Value{}, b, r.rebase(err, b)
	}

	arr := make([]Value, n)
	for i := range arr {
		arr[i], o, err = r.decodeValue(o, depth)
		if err != nil {
			return Value{}, b, WrapError(err, i)
		}
	}
	return Array(arr...), o, nil
}

func (r *Reader) decodeObject(b []byte, depth int) (Value, []byte, error) {
	if err := r.checkDepth(depth); err != nil {
		return Value{}, b, err
	}
	n, o, err := readCountCore(b, tagObject, r.order, r.maxContainer, minObjectPairSize)
	if err != nil {
		return Value{}, b, r.rebase(err, b)
	}

	obj := NewObject(n)
	for i := 0; i < n; i++ {
		var key []byte
		key, o, err = r.readBytestring(o)
		if err != nil {
			return Value{}, b, WrapError(err, i)
		}
		var v Value
		v, o, err = r.decodeValue(o, depth)
		if err != nil {
			return Value{}, b, WrapError(err, key)
		}
		obj.set(key, v)
	}
	return ObjectValue(obj), o, nil
}

// readTemplateKeys reads the key array of a template. b starts at the
// template tag. The keys alias b.
func (r *Reader) readTemplateKeys(b []byte, depth int) ([][]byte, []byte, error) {
	if len(b) < 2 || b[1] != tagArray {
		return nil, b, ErrMalformedTemplate
	}
	if err := r.checkDepth(depth + 1); err != nil {
		return nil, b, err
	}
	n, o, err := readCountCore(b[1:], tagArray, r.order, r.maxContainer, minArrayElemSize)
	if err != nil {
		return nil, b, r.rebase(err, b[1:])
	}

	keys := make([][]byte, n)
	for i := range keys {
		if len(o) > 0 && o[0] != tagString && getType(o[0]) != InvalidType {
			return nil, b, WrapError(ErrMalformedTemplate, i)
		}
		start := o
		keys[i], o, err = readBytestringCore(o, r.order, r.maxString)
		if err != nil {
			return nil, b, WrapError(r.rebase(err, start), i)
		}
	}
	return keys, o, nil
}

// readTemplateRows reads the row count that follows a non-empty key array.
func (r *Reader) readTemplateRows(b []byte, cols int) (int, []byte, error) {
	rows, o, err := readIntCore(b, r.order)
	if err != nil {
		return 0, b, r.rebase(err, b)
	}
	if err := checkLen(rows, len(o)/cols, r.maxContainer); err != nil {
		return 0, b, r.rebase(err, b)
	}
	return int(rows), o, nil
}

// decodeTemplate expands a template into an array of objects. Row values
// tagged SKIP leave their key out of that row.
func (r *Reader) decodeTemplate(b []byte, depth int) (Value, []byte, error) {
	if err := r.checkDepth(depth); err != nil {
		return Value{}, b, err
	}
	keys, o, err := r.readTemplateKeys(b, depth)
	if err != nil {
		return Value{}, b, err
	}
	if len(keys) == 0 {
		return Array(), o, nil
	}

	nrows, o, err := r.readTemplateRows(o, len(keys))
	if err != nil {
		return Value{}, b, err
	}

	// keys are shared by every row
	if !r.zeroCopy {
		for i, k := range keys {
			keys[i] = bytes.Clone(k)
		}
	}

	arr := make([]Value, nrows)
	row := make([]Pair, 0, len(keys))
	for i := range arr {
		row = row[:0]
		for _, k := range keys {
			if len(o) > 0 && o[0] == tagSkip {
				o = o[SkipSize:]
				continue
			}
			var v Value
			v, o, err = r.decodeValue(o, depth+1)
			if err != nil {
				return Value{}, b, WrapError(err, i, k)
			}
			row = append(row, Pair{Key: k, Value: v})
		}
		obj := NewObject(len(row))
		for _, p := range row {
			obj.set(p.Key, p.Value)
		}
		arr[i] = ObjectValue(obj)
	}
	return Array(arr...), o, nil
}

// skipValue walks the value at the start of b without building a tree.
func (r *Reader) skipValue(b []byte, depth int) ([]byte, error) {
	if len(b) < 1 {
		return b, ErrShortBytes
	}

	switch b[0] {
	case tagInt8, tagInt16, tagInt32, tagInt64:
		_, o, err := readIntCore(b, r.order)
		if err != nil {
			return b, r.rebase(err, b)
		}
		return o, nil
	case tagReal:
		if len(b) < RealSize {
			return b, ErrShortBytes
		}
		return b[RealSize:], nil
	case tagTrue, tagFalse, tagNull:
		return b[1:], nil
	case tagString:
		_, o, err := readBytestringCore(b, r.order, r.maxString)
		if err != nil {
			return b, r.rebase(err, b)
		}
		return o, nil
	case tagArray:
		depth++
		if err := r.checkDepth(depth); err != nil {
			return b, err
		}
		n, o, err := readCountCore(b, tagArray, r.order, r.maxContainer, minArrayElemSize)
		if err != nil {
			return b, r.rebase(err, b)
		}
		for i := 0; i < n; i++ {
			o, err = r.skipValue(o, depth)
			if err != nil {
				return b, WrapError(err, i)
			}
		}
		return o, nil
	case tagObject:
		depth++
		if err := r.checkDepth(depth); err != nil {
			return b, err
		}
		n, o, err := readCountCore(b, tagObject, r.order, r.maxContainer, minObjectPairSize)
		if err != nil {
			return b, r.rebase(err, b)
		}
		for i := 0; i < n; i++ {
			start := o
			var key []byte
			key, o, err = readBytestringCore(o, r.order, r.maxString)
			if err != nil {
				return b, WrapError(r.rebase(err, start), i)
			}
			o, err = r.skipValue(o, depth)
			if err != nil {
				return b, WrapError(err, key)
			}
		}
		return o, nil
	case tagTemplate:
		depth++
		if err := r.checkDepth(depth); err != nil {
			return b, err
		}
		keys, o, err := r.readTemplateKeys(b, depth)
		if err != nil {
			return b, err
		}
		if len(keys) == 0 {
			return o, nil
		}
		nrows, o, err := r.readTemplateRows(o, len(keys))
		if err != nil {
			return b, err
		}
		for i := 0; i < nrows; i++ {
			for _, k := range keys {
				if len(o) > 0 && o[0] == tagSkip {
					o = o[SkipSize:]
					continue
				}
				o, err = r.skipValue(o, depth+1)
				if err != nil {
					return b, WrapError(err, i, k)
				}
			}
		}
		return o, nil
	}
	return b, UnknownTagError{Tag: b[0], Offset: r.offset(b)}
}
