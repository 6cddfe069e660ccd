package export

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"
)

const (
	reportHeader = "TELEGRAM FOLDERS EXPORT"
	folderPrefix = "Folder: "
)

// RenderJSON serializes folders as 2-space indented JSON. HTML escaping is
// off so non-ASCII titles and usernames come out literally.
func RenderJSON(result []Folder) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(result); err != nil {
		return "", err
	}
	return strings.TrimRight(buf.String(), "\n"), nil
}

// RenderText produces the fixed-structure plain text report with per-folder
// channel/group/user sections and aggregate totals.
func RenderText(result []Folder) string {
	rule := strings.Repeat("=", len(reportHeader))
	lines := []string{reportHeader, rule, ""}

	var totalChannels, totalGroups, totalUsers int

	for _, folder := range result {
		lines = append(lines,
			folderPrefix+folder.Title,
			strings.Repeat("-", len(folderPrefix)+utf8.RuneCountInString(folder.Title)),
		)

		var channels, groups, users []Peer
		for _, peer := range folder.Peers {
			// peers with an unrecognized type tag fall out of every bucket
			switch peer.Type {
			case TypeChannel:
				channels = append(channels, peer)
			case TypeGroup:
				groups = append(groups, peer)
			case TypeUser:
				users = append(users, peer)
			}
		}

		totalChannels += len(channels)
		totalGroups += len(groups)
		totalUsers += len(users)

		lines = append(lines, bucketLines("Channels", "Channel", channels)...)
		lines = append(lines, bucketLines("Groups", "Group", groups)...)
		lines = append(lines, bucketLines("Users", "User", users)...)

		if len(channels)+len(groups)+len(users) == 0 {
			lines = append(lines, "No items", "")
		}
	}

	lines = append(lines,
		rule,
		fmt.Sprintf("Total: %d folders, %d channels, %d groups, %d users",
			len(result), totalChannels, totalGroups, totalUsers),
		fmt.Sprintf("Generated: %s UTC", time.Now().UTC().Format("2006-01-02 15:04:05")),
	)
	return strings.Join(lines, "\n")
}

// bucketLines renders one peer-type section; an empty bucket renders nothing.
func bucketLines(plural, singular string, peers []Peer) []string {
	if len(peers) == 0 {
		return nil
	}

	lines := make([]string, 0, len(peers)+2)
	lines = append(lines, fmt.Sprintf("%s (%d):", plural, len(peers)))
	for _, peer := range peers {
		name := "Unnamed " + singular
		if peer.Name != nil && *peer.Name != "" {
			name = *peer.Name
		}

		line := "  • " + name
		if peer.Username != nil && *peer.Username != "" {
			line += fmt.Sprintf(" (@%s)", *peer.Username)
		}
		line += fmt.Sprintf(" [ID: %d]", peer.ID)
		lines = append(lines, line)
	}
	return append(lines, "")
}
