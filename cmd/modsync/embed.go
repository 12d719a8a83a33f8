package modsync

import (
	"embed"
	"io/fs"
)

//go:embed topics/*.md
var topicFiles embed.FS

// TopicsFS holds the help topics shipped with the binary.
func TopicsFS() fs.FS {
	sub, err := fs.Sub(topicFiles, "topics")
	if err != nil {
		panic(err)
	}
	return sub
}
