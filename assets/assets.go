package assets

import (
	"embed"
	"errors"
	"fmt"
	"image"
	_ "image/png"
	"io/fs"
	"path"
	"sort"
	"sync"
)

// ErrInvalidAsset 图片资源缺失或无法解码
var ErrInvalidAsset = errors.New("invalid asset")

//go:embed graphics/*.png
var embedded embed.FS

// Set 按逻辑路径索引的只读图片表，加载后不再修改，可被多个实体并发读取
type Set struct {
	images map[string]image.Image
}

// Load 解码 fsys 中 dir 目录下的全部 PNG，逻辑路径形如 "graphics/slime_idle.png"
func Load(fsys fs.FS, dir string) (*Set, error) {
	names, err := fs.Glob(fsys, path.Join(dir, "*.png"))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidAsset, dir, err)
	}
	s := &Set{images: make(map[string]image.Image, len(names))}
	for _, name := range names {
		img, err := decode(fsys, name)
		if err != nil {
			return nil, err
		}
		s.images[name] = img
	}
	return s, nil
}

func decode(fsys fs.FS, name string) (image.Image, error) {
	f, err := fsys.Open(name)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidAsset, name, err)
	}
	defer f.Close()
	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidAsset, name, err)
	}
	return img, nil
}

var (
	defaultSet  *Set
	defaultErr  error
	defaultOnce sync.Once
)

// Default 首次调用时加载内嵌图片，之后始终返回同一份结果（进程级共享）
func Default() (*Set, error) {
	defaultOnce.Do(func() {
		defaultSet, defaultErr = Load(embedded, "graphics")
	})
	return defaultSet, defaultErr
}

// Image 按逻辑路径查找图片
func (s *Set) Image(p string) (image.Image, bool) {
	if s == nil {
		return nil, false
	}
	img, ok := s.images[p]
	return img, ok
}

// Paths 返回已加载的全部逻辑路径（有序）
func (s *Set) Paths() []string {
	out := make([]string, 0, len(s.images))
	for p := range s.images {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}
