package media

import (
	"bytes"
	"io"
	"mime/multipart"
)

// Kind 表单中同一字段可能是新文件、已有 URL 或未提交
type Kind int

const (
	Absent Kind = iota
	NewFile
	Existing
)

// File 待存储的上传文件
type File struct {
	Name string
	Size int64
	Open func() (io.ReadCloser, error)
}

// FromMultipart 适配 gin/net/http 的 multipart 文件
func FromMultipart(fh *multipart.FileHeader) *File {
	return &File{
		Name: fh.Filename,
		Size: fh.Size,
		Open: func() (io.ReadCloser, error) { return fh.Open() },
	}
}

// FromBytes 内存中的文件
func FromBytes(name string, data []byte) *File {
	return &File{
		Name: name,
		Size: int64(len(data)),
		Open: func() (io.ReadCloser, error) { return io.NopCloser(bytes.NewReader(data)), nil },
	}
}

// Field 单个媒体字段的解析结果
type Field struct {
	Kind Kind
	File *File
	Ref  string
}

func Upload(f *File) Field {
	if f == nil {
		return Field{}
	}
	return Field{Kind: NewFile, File: f}
}

func Keep(ref string) Field {
	return Field{Kind: Existing, Ref: ref}
}

// Gallery Submitted=false 表示表单里根本没有 gallery 字段
type Gallery struct {
	Submitted bool
	Items     []Field
}

// SubmitGallery 按提交顺序组装 gallery
func SubmitGallery(items ...Field) Gallery {
	return Gallery{Submitted: true, Items: items}
}
