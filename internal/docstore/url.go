package docstore

import (
	"fmt"
	"strings"
)

// FolderRef is the result of resolving a shared folder link. It is the
// only thing the reconciler needs to know about the remote endpoint.
type FolderRef struct {
	Domain     string
	FolderID   string
	APIBaseURL string
}

// ParseFolderLink resolves a folder link like
// https://docs.example.com/AbCdEf123/team-docs into the folder id and
// the platform API base URL. Pure string mapping, no network.
func ParseFolderLink(link string) (*FolderRef, error) {
	link = strings.TrimSpace(link)
	if link == "" {
		return nil, fmt.Errorf("folder link is empty")
	}

	rest := link
	if i := strings.Index(rest, "://"); i >= 0 {
		rest = rest[i+3:]
	}
	rest = strings.Trim(rest, "/")

	parts := strings.Split(rest, "/")
	domain := parts[0]
	if domain == "" || !strings.Contains(domain, ".") {
		return nil, fmt.Errorf("no domain in folder link %q", link)
	}

	var folderID string
	for _, part := range parts[1:] {
		if part == "" {
			continue
		}
		if i := strings.IndexAny(part, "?#"); i >= 0 {
			part = part[:i]
		}
		folderID = part
		break
	}
	if folderID == "" {
		return nil, fmt.Errorf("no folder id in folder link %q", link)
	}

	return &FolderRef{
		Domain:     domain,
		FolderID:   folderID,
		APIBaseURL: "https://platform." + domain,
	}, nil
}
