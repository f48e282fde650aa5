package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"google.golang.org/protobuf/types/known/structpb"
)

type outputMode struct {
	json bool
}

func (o outputMode) printJSON(value any) {
	data, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		fatal("format json", err)
	}
	fmt.Println(string(data))
}

func (o outputMode) table(rows [][]string) {
	w := tabwriter.NewWriter(os.Stdout, 2, 4, 2, ' ', 0)
	for _, row := range rows {
		fmt.Fprintln(w, strings.Join(row, "\t"))
	}
	_ = w.Flush()
}

// pluginRows flattens a ListPlugins response; keys without a manifest get "-".
func pluginRows(resp *structpb.Struct) [][]string {
	rows := [][]string{{"KEY", "NAME", "VERSION", "STATUS", "CHANNELS"}}
	for _, v := range resp.GetFields()["plugins"].GetListValue().GetValues() {
		fields := v.GetStructValue().GetFields()
		channels := make([]string, 0)
		for _, c := range fields["channels"].GetListValue().GetValues() {
			channels = append(channels, c.GetStringValue())
		}
		rows = append(rows, []string{
			fields["key"].GetStringValue(),
			orDash(fields["display_name"].GetStringValue()),
			orDash(fields["version"].GetStringValue()),
			orDash(fields["status"].GetStringValue()),
			orDash(strings.Join(channels, ",")),
		})
	}
	return rows
}

func describeText(plugin *structpb.Struct) string {
	fields := plugin.GetFields()
	var b strings.Builder
	fmt.Fprintf(&b, "id: %s\n", fields["plugin_id"].GetStringValue())
	fmt.Fprintf(&b, "name: %s\n", fields["display_name"].GetStringValue())
	fmt.Fprintf(&b, "version: %s\n", fields["version"].GetStringValue())
	fmt.Fprintf(&b, "status: %s\n", fields["status"].GetStringValue())
	if msg := fields["health_message"].GetStringValue(); msg != "" {
		fmt.Fprintf(&b, "health: %s\n", msg)
	}
	fmt.Fprintf(&b, "registered: %t\n", fields["registered"].GetBoolValue())
	b.WriteString("channels:\n")
	for _, c := range fields["channels"].GetListValue().GetValues() {
		fmt.Fprintf(&b, "  - %s\n", c.GetStringValue())
	}
	return b.String()
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
