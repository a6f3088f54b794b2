package main

import (
	"fmt"
	"reflect"
	"sort"
	"strconv"
	"strings"
	"time"
)

// settablePrefixes are the option keys :set may change while chatting,
// the rest only take effect on the next start.
var settablePrefixes = []string{"model.", "non-interactive", "disable-auto-shrink", "renderer"}

type StudioInfo struct {
	s    *Studio
	opts *ChatCommandOptions
}

func NewStudioInfo(s *Studio, opts *ChatCommandOptions) *StudioInfo {
	return &StudioInfo{s: s, opts: opts}
}

func settable(key string) bool {
	for _, p := range settablePrefixes {
		if strings.HasPrefix(key, p) {
			return true
		}
	}
	return false
}

func (i *StudioInfo) infoCommand() (_ string) {
	var fixed, changeable []string
	for k, v := range buildFieldIndex(i.opts) {
		if settable(k) {
			changeable = append(changeable, fmt.Sprint(fmt.Sprintf("%-30s", k),
				i.s.textStyle.Render(fmt.Sprint(v))))
			continue
		}
		fixed = append(fixed, fmt.Sprint(fmt.Sprintf("%-30s", k),
			i.s.errStyle.Render(fmt.Sprint(v))))
	}
	sort.Strings(fixed)
	sort.Strings(changeable)
	for _, line := range fixed {
		fmt.Fprintln(i.s.stdout, line)
	}
	fmt.Fprintln(i.s.stdout, strings.Repeat("-", 30))
	for _, line := range changeable {
		fmt.Fprintln(i.s.stdout, line)
	}
	return
}

func (i *StudioInfo) setCommand() (_ string) {
	opts := struct {
		Key   string `cortana:"key, -,"`
		Value string `cortana:"val, -,"`
	}{}
	builtins.Parse(&opts)
	if err := i.set(opts.Key, opts.Value); err != nil {
		i.s.Errorln(err)
	}
	return
}

func (i *StudioInfo) set(key, value string) error {
	if key == "" {
		return fmt.Errorf("key is required")
	}
	rv, ok := buildFieldIndex(i.opts)[key]
	if !ok {
		return fmt.Errorf("key is not found: %s", key)
	}
	if !settable(key) {
		return fmt.Errorf("key is not settable in interactive mode, use config instead: %s", key)
	}
	return setValue(rv, value)
}

func setValue(rv reflect.Value, value string) error {
	for rv.Kind() == reflect.Ptr {
		rv = rv.Elem()
	}

	switch rv.Kind() {
	case reflect.String:
		rv.SetString(value)
	case reflect.Bool:
		if value == "" {
			rv.SetBool(true)
			return nil
		}
		b, err := strconv.ParseBool(value)
		if err != nil {
			return err
		}
		rv.SetBool(b)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32,
		reflect.Int64:
		n, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			d, derr := time.ParseDuration(value)
			if derr != nil {
				return err
			}
			n = int64(d)
		}
		rv.SetInt(n)
	case reflect.Float32, reflect.Float64:
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return err
		}
		rv.SetFloat(f)
	default:
		return fmt.Errorf("unsupported kind: %s", rv.Kind())
	}
	return nil
}

// buildFieldIndex maps the dotted yaml keys of v to its fields.
func buildFieldIndex(v interface{}) map[string]reflect.Value {
	m := make(map[string]reflect.Value)
	analyze("", reflect.ValueOf(v), m)
	return m
}

func analyze(prefix string, val reflect.Value, m map[string]reflect.Value) {
	for val.Kind() == reflect.Ptr {
		val = val.Elem()
	}
	if val.Kind() != reflect.Struct {
		return
	}
	for i := 0; i < val.NumField(); i++ {
		vField := val.Field(i)
		tField := val.Type().Field(i)

		tags := strings.Split(tField.Tag.Get("yaml"), ",")
		tag := tags[0]
		if tag == "-" {
			continue
		}
		inline := len(tags) > 1 && tags[1] == "inline"
		if tag == "" {
			tag = tField.Name
		}

		if vField.Kind() == reflect.Struct {
			if inline {
				analyze(prefix, vField, m)
			} else {
				analyze(fmt.Sprintf("%s%s.", prefix, tag), vField, m)
			}
			continue
		}

		m[fmt.Sprintf("%s%s", prefix, tag)] = vField
	}
}

func (i *StudioInfo) registerBuiltinCommands() {
	builtins.AddCommand(":info", builtin(i.infoCommand), "show studio options")
	builtins.AddCommand(":set", builtin(i.setCommand), "set studio options, e.g. :set model.stream false")
}
