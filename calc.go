package statenet

import (
	"cmp"
	"fmt"
)

// Number is the set of types Sum and Product operate on.
type Number interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64 |
		~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64 |
		~float32 | ~float64
}

// Lambda wraps a calculation which cannot fail.
func Lambda(f func(inputs []Value) Value) Func {
	return func(inputs []Value) (Value, error) {
		return f(inputs), nil
	}
}

// Sum adds up all inputs, which have to be of type T.
func Sum[T Number]() Func {
	return func(inputs []Value) (Value, error) {
		var sum T
		for i, v := range inputs {
			x, err := inputAs[T](inputs, i, v)
			if err != nil {
				return nil, err
			}
			sum += x
		}
		return sum, nil
	}
}

// Product multiplies all inputs, which have to be of type T.
func Product[T Number]() Func {
	return func(inputs []Value) (Value, error) {
		var product T = 1
		for i, v := range inputs {
			x, err := inputAs[T](inputs, i, v)
			if err != nil {
				return nil, err
			}
			product *= x
		}
		return product, nil
	}
}

// Unary adapts a typed function of one dependency.
func Unary[A, R any](f func(A) R) Func {
	return func(inputs []Value) (Value, error) {
		if err := arity(inputs, 1); err != nil {
			return nil, err
		}
		a, err := inputAs[A](inputs, 0, inputs[0])
		if err != nil {
			return nil, err
		}
		return f(a), nil
	}
}

// Binary adapts a typed function of two dependencies.
func Binary[A, B, R any](f func(A, B) R) Func {
	return func(inputs []Value) (Value, error) {
		if err := arity(inputs, 2); err != nil {
			return nil, err
		}
		a, err := inputAs[A](inputs, 0, inputs[0])
		if err != nil {
			return nil, err
		}
		b, err := inputAs[B](inputs, 1, inputs[1])
		if err != nil {
			return nil, err
		}
		return f(a, b), nil
	}
}

// Ternary adapts a typed function of three dependencies.
func Ternary[A, B, C, R any](f func(A, B, C) R) Func {
	return func(inputs []Value) (Value, error) {
		if err := arity(inputs, 3); err != nil {
			return nil, err
		}
		a, err := inputAs[A](inputs, 0, inputs[0])
		if err != nil {
			return nil, err
		}
		b, err := inputAs[B](inputs, 1, inputs[1])
		if err != nil {
			return nil, err
		}
		c, err := inputAs[C](inputs, 2, inputs[2])
		if err != nil {
			return nil, err
		}
		return f(a, b, c), nil
	}
}

// Clamp is a validator coercing values of type T into [lo, hi].
func Clamp[T cmp.Ordered](lo, hi T) Validator {
	return func(v Value) (Value, error) {
		x, ok := v.(T)
		if !ok {
			return nil, fmt.Errorf("%w: expected %T, have %T", ErrTypeMismatch, lo, v)
		}
		return max(lo, min(hi, x)), nil
	}
}

func inputAs[T any](inputs []Value, i int, v Value) (T, error) {
	x, ok := v.(T)
	if !ok {
		return x, fmt.Errorf("%w: input %d of %d is %T, expected %T", ErrTypeMismatch, i, len(inputs), v, x)
	}
	return x, nil
}

func arity(inputs []Value, n int) error {
	if len(inputs) != n {
		return fmt.Errorf("%w: expected %d inputs, have %d", ErrTypeMismatch, n, len(inputs))
	}
	return nil
}
