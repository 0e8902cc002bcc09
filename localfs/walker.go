// Package localfs maps a local directory tree onto remote upload targets.
package localfs

import (
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/spf13/afero"
	"github.com/xxxsen/occlient/apierr"
	"github.com/xxxsen/occlient/dav"
)

const currentDir = "."

// FileGroup lists the plain files that live directly inside LocalDir and
// must be stored under RemoteDir. Both directories end with "/".
type FileGroup struct {
	RemoteDir string
	LocalDir  string
	Files     []string
}

type walkItem struct {
	local  string
	remote string
}

// Walk enumerates localPath and returns one group per directory level,
// root first, in depth first pre-order. The root remote dir is targetPath
// plus the last segment of localPath, or targetPath itself when localPath
// ends with ".". Symlink cycles are not detected.
func Walk(fs afero.Fs, localPath string, targetPath string) ([]*FileGroup, error) {
	if len(localPath) == 0 {
		return nil, apierr.NewFilesystem(fmt.Errorf("local path is empty"))
	}
	root := &walkItem{
		local:  withSlash(localPath),
		remote: rootRemote(localPath, targetPath),
	}
	groups := make([]*FileGroup, 0, 8)
	index := make(map[string]*FileGroup)
	stack := []*walkItem{root}
	for len(stack) > 0 {
		item := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		group, ok := index[item.remote]
		if !ok {
			group = &FileGroup{RemoteDir: item.remote, LocalDir: item.local, Files: []string{}}
			index[item.remote] = group
			groups = append(groups, group)
		}
		ents, err := afero.ReadDir(fs, item.local)
		if err != nil {
			return nil, apierr.NewFilesystem(fmt.Errorf("read dir:%s failed, err:%w", item.local, err))
		}
		subs := make([]*walkItem, 0, len(ents))
		for _, ent := range ents {
			name := ent.Name()
			st, err := fs.Stat(item.local + name)
			if err != nil {
				return nil, apierr.NewFilesystem(fmt.Errorf("stat:%s failed, err:%w", item.local+name, err))
			}
			if st.IsDir() {
				subs = append(subs, &walkItem{local: item.local + name + "/", remote: item.remote + name + "/"})
				continue
			}
			group.Files = append(group.Files, name)
		}
		for i := len(subs) - 1; i >= 0; i-- {
			stack = append(stack, subs[i])
		}
	}
	return groups, nil
}

func rootRemote(localPath string, targetPath string) string {
	if len(targetPath) == 0 {
		targetPath = "/"
	}
	target := withSlash(dav.NormalizePath(targetPath))
	segs := strings.FieldsFunc(localPath, func(r rune) bool { return r == '/' })
	if len(segs) == 0 {
		return target
	}
	last := segs[len(segs)-1]
	if last == currentDir {
		return target
	}
	return target + last + "/"
}

func withSlash(p string) string {
	if strings.HasSuffix(p, "/") {
		return p
	}
	return p + "/"
}

// MTime returns the modification time of p.
func MTime(fs afero.Fs, p string) (time.Time, error) {
	st, err := fs.Stat(p)
	if err != nil {
		return time.Time{}, apierr.NewFilesystem(err)
	}
	return st.ModTime(), nil
}

// Size returns the size in bytes of p.
func Size(fs afero.Fs, p string) (int64, error) {
	st, err := fs.Stat(p)
	if err != nil {
		return 0, apierr.NewFilesystem(err)
	}
	return st.Size(), nil
}

// IsDir reports whether p is a directory.
func IsDir(fs afero.Fs, p string) (bool, error) {
	st, err := fs.Stat(p)
	if err != nil {
		return false, apierr.NewFilesystem(err)
	}
	return st.IsDir(), nil
}

// RemoteFile joins a group's remote dir and one of its file names.
func (g *FileGroup) RemoteFile(name string) string {
	return path.Join(g.RemoteDir, name)
}

// LocalFile joins a group's local dir and one of its file names.
func (g *FileGroup) LocalFile(name string) string {
	return g.LocalDir + name
}
