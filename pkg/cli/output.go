package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"reflect"
	"strings"
	"text/tabwriter"

	"gopkg.in/yaml.v3"
)

// OutputFormat selects how command results are rendered.
type OutputFormat string

const (
	OutputTable OutputFormat = "table"
	OutputJSON  OutputFormat = "json"
	OutputYAML  OutputFormat = "yaml"
)

// OutputOptions carries the rendering settings shared by every
// subcommand via the root's persistent flags.
type OutputOptions struct {
	Format OutputFormat
	Quiet  bool
	Writer io.Writer
}

func NewOutputOptions() *OutputOptions {
	return &OutputOptions{
		Format: OutputTable,
		Quiet:  false,
		Writer: os.Stdout,
	}
}

// FormatOutput renders data in the requested format. Unknown formats
// fall back to the table renderer.
func FormatOutput(data any, format OutputFormat) (string, error) {
	switch format {
	case OutputJSON:
		return formatJSON(data)
	case OutputYAML:
		return formatYAML(data)
	case OutputTable:
		return formatTable(data)
	default:
		return formatTable(data)
	}
}

func formatJSON(data any) (string, error) {
	b, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal JSON: %w", err)
	}
	return string(b), nil
}

func formatYAML(data any) (string, error) {
	b, err := yaml.Marshal(data)
	if err != nil {
		return "", fmt.Errorf("marshal YAML: %w", err)
	}
	return string(b), nil
}

// formatTable renders slices as header+row tables, maps as key/value
// pairs, and structs as a single field column.
func formatTable(data any) (string, error) {
	if data == nil {
		return "", nil
	}

	v := reflect.ValueOf(data)
	if v.Kind() == reflect.Ptr {
		if v.IsNil() {
			return "", nil
		}
		v = v.Elem()
	}

	switch v.Kind() {
	case reflect.Slice, reflect.Array:
		return formatSliceTable(data)
	case reflect.Map:
		return formatMapTable(data)
	case reflect.Struct:
		return formatStructTable(data)
	default:
		return fmt.Sprintf("%v", data), nil
	}
}

func formatSliceTable(data any) (string, error) {
	v := reflect.ValueOf(data)
	if v.Len() == 0 {
		return "No items", nil
	}

	var sb strings.Builder
	w := tabwriter.NewWriter(&sb, 0, 0, 2, ' ', 0)

	// Headers come from the first element; rows of other shapes
	// render blank cells for fields they lack.
	first := v.Index(0).Interface()
	headers := getFields(first)

	fmt.Fprintln(w, strings.Join(headers, "\t"))
	fmt.Fprintln(w, strings.Join(makeSeparators(len(headers)), "\t"))

	for i := 0; i < v.Len(); i++ {
		item := v.Index(i).Interface()
		values := getFieldValues(item, headers)
		fmt.Fprintln(w, strings.Join(values, "\t"))
	}

	w.Flush()
	return sb.String(), nil
}

func formatMapTable(data any) (string, error) {
	v := reflect.ValueOf(data)
	if v.Kind() != reflect.Map {
		return fmt.Sprintf("%v", data), nil
	}

	var sb strings.Builder
	w := tabwriter.NewWriter(&sb, 0, 0, 2, ' ', 0)

	iter := v.MapRange()
	for iter.Next() {
		key := fmt.Sprintf("%v", iter.Key())
		value := formatValue(iter.Value().Interface())
		fmt.Fprintf(w, "%s\t%s\n", key, value)
	}

	w.Flush()
	return sb.String(), nil
}

func formatStructTable(data any) (string, error) {
	var sb strings.Builder
	w := tabwriter.NewWriter(&sb, 0, 0, 2, ' ', 0)

	headers := getFields(data)
	values := getFieldValues(data, headers)

	for i, h := range headers {
		fmt.Fprintf(w, "%s\t%s\n", h, values[i])
	}

	w.Flush()
	return sb.String(), nil
}

// fieldLabel derives a column name from a struct field, preferring
// the json tag so table headers match the JSON/YAML renderings.
func fieldLabel(field reflect.StructField) string {
	name := field.Tag.Get("json")
	if name == "" || name == "-" {
		return field.Name
	}
	if idx := strings.Index(name, ","); idx != -1 {
		name = name[:idx]
	}
	return name
}

func getFields(data any) []string {
	v := reflect.ValueOf(data)
	if v.Kind() == reflect.Ptr {
		v = v.Elem()
	}
	if v.Kind() != reflect.Struct {
		return []string{"value"}
	}

	t := v.Type()
	var fields []string
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if field.PkgPath != "" {
			continue
		}
		fields = append(fields, fieldLabel(field))
	}
	return fields
}

func getFieldValues(data any, fields []string) []string {
	v := reflect.ValueOf(data)
	if v.Kind() == reflect.Ptr {
		v = v.Elem()
	}

	values := make([]string, len(fields))
	if v.Kind() == reflect.Map {
		for i, field := range fields {
			fv := v.MapIndex(reflect.ValueOf(field))
			if fv.IsValid() {
				values[i] = formatValue(fv.Interface())
			}
		}
		return values
	}

	if v.Kind() != reflect.Struct {
		if len(fields) > 0 {
			values[0] = formatValue(data)
		}
		return values
	}

	t := v.Type()
	fieldMap := make(map[string]int)
	for i := 0; i < t.NumField(); i++ {
		fieldMap[fieldLabel(t.Field(i))] = i
	}

	for i, field := range fields {
		if idx, ok := fieldMap[field]; ok {
			values[i] = formatValue(v.Field(idx).Interface())
		}
	}

	return values
}

// formatValue renders one cell. Composite values fall back to their
// compact JSON encoding.
func formatValue(v any) string {
	if v == nil {
		return ""
	}

	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Ptr {
		if rv.IsNil() {
			return ""
		}
		v = rv.Elem().Interface()
	}

	switch val := v.(type) {
	case string:
		return val
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return fmt.Sprintf("%d", val)
	case float32, float64:
		return fmt.Sprintf("%.2f", val)
	case bool:
		return fmt.Sprintf("%t", val)
	default:
		b, err := json.Marshal(val)
		if err != nil {
			return fmt.Sprintf("%v", val)
		}
		return string(b)
	}
}

func makeSeparators(count int) []string {
	seps := make([]string, count)
	for i := range seps {
		seps[i] = strings.Repeat("-", 10)
	}
	return seps
}

// PrintOutput renders data to the configured writer, honoring quiet
// mode.
func PrintOutput(data any, opts *OutputOptions) error {
	if opts.Quiet {
		return nil
	}

	output, err := FormatOutput(data, opts.Format)
	if err != nil {
		return err
	}

	fmt.Fprint(opts.Writer, output)
	return nil
}

// statusPayload is the envelope PrintError and PrintSuccess emit for
// structured formats.
func statusPayload(success bool, message string) map[string]any {
	if success {
		return map[string]any{
			"success": true,
			"message": message,
		}
	}
	return map[string]any{
		"success": false,
		"error": map[string]string{
			"message": message,
		},
	}
}

// PrintError reports a failure on stderr. Quiet mode does not
// suppress errors.
func PrintError(err error, opts *OutputOptions) {
	switch opts.Format {
	case OutputJSON:
		b, _ := json.MarshalIndent(statusPayload(false, err.Error()), "", "  ")
		fmt.Fprintln(os.Stderr, string(b))
	case OutputYAML:
		b, _ := yaml.Marshal(statusPayload(false, err.Error()))
		fmt.Fprint(os.Stderr, string(b))
	default:
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	}
}

// PrintSuccess reports a confirmation message, honoring quiet mode.
func PrintSuccess(message string, opts *OutputOptions) {
	if opts.Quiet {
		return
	}

	switch opts.Format {
	case OutputJSON:
		b, _ := json.MarshalIndent(statusPayload(true, message), "", "  ")
		fmt.Fprintln(opts.Writer, string(b))
	case OutputYAML:
		b, _ := yaml.Marshal(statusPayload(true, message))
		fmt.Fprint(opts.Writer, string(b))
	default:
		fmt.Fprintln(opts.Writer, message)
	}
}
