package cpn

import (
	"fmt"
	"reflect"
	"sort"
)

// walker folds members into a net, recursing into collections and
// declarative structs.
type walker struct {
	net  *Net
	seen map[uintptr]bool
}

// add adds member to the net. When strict is false, values that are not
// members are skipped instead of returning ErrUnknownMember.
func (w *walker) add(member any, strict bool) error {
	switch v := member.(type) {
	case nil:
		return nil
	case *Place:
		if v != nil {
			w.net.addPlace(v)
		}
		return nil
	case *Transition:
		if v != nil {
			w.net.addTransition(v)
		}
		return nil
	case *ArcPT:
		if v == nil {
			return nil
		}
		return w.addArc(v)
	case *ArcTP:
		if v == nil {
			return nil
		}
		return w.addArc(v)
	case *Net:
		if v != nil {
			w.net.merge(v)
		}
		return nil
	case Marking, TokenSet, *Token, ColorSet, Color:
		if strict {
			return fmt.Errorf("%w: %T", ErrUnknownMember, member)
		}
		return nil
	}
	return w.addValue(reflect.ValueOf(member), strict)
}

func (w *walker) addArc(a Arc) error {
	if !a.Completed() {
		return fmt.Errorf("%w: %s", ErrArcIncomplete, a)
	}
	if err := a.Weight().Validate(); err != nil {
		return fmt.Errorf("%s: %w", a, err)
	}
	w.net.addArc(a)
	return nil
}

func (w *walker) addValue(v reflect.Value, strict bool) error {
	switch v.Kind() {
	case reflect.Pointer:
		if v.IsNil() {
			return nil
		}
		if v.Elem().Kind() == reflect.Struct {
			if w.seen[v.Pointer()] {
				return nil
			}
			w.seen[v.Pointer()] = true
		}
		return w.addValue(v.Elem(), strict)
	case reflect.Interface:
		if v.IsNil() {
			return nil
		}
		return w.addElem(v.Elem(), strict)
	case reflect.Slice, reflect.Array:
		for i := 0; i < v.Len(); i++ {
			if err := w.addElem(v.Index(i), strict); err != nil {
				return err
			}
		}
		return nil
	case reflect.Map:
		keys := v.MapKeys()
		sort.Slice(keys, func(i, j int) bool {
			return fmt.Sprint(keys[i].Interface()) < fmt.Sprint(keys[j].Interface())
		})
		for _, k := range keys {
			if err := w.addElem(v.MapIndex(k), strict); err != nil {
				return err
			}
		}
		return nil
	case reflect.Struct:
		t := v.Type()
		for i := 0; i < v.NumField(); i++ {
			if !t.Field(i).IsExported() {
				continue
			}
			if err := w.addElem(v.Field(i), false); err != nil {
				return err
			}
		}
		return nil
	}
	if strict {
		return fmt.Errorf("%w: %s", ErrUnknownMember, v.Type())
	}
	return nil
}

func (w *walker) addElem(v reflect.Value, strict bool) error {
	if !v.IsValid() || !v.CanInterface() {
		return nil
	}
	return w.add(v.Interface(), strict)
}

// elements returns the items of a slice or array.
func elements(member any) ([]any, bool) {
	v := reflect.ValueOf(member)
	if v.Kind() != reflect.Slice && v.Kind() != reflect.Array {
		return nil, false
	}
	items := make([]any, v.Len())
	for i := range items {
		items[i] = v.Index(i).Interface()
	}
	return items, true
}
