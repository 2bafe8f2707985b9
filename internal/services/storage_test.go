package services

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestStorageService(t *testing.T) {
	Convey("Given a storage directory", t, func() {
		dir := filepath.Join(t.TempDir(), "uploads")
		storage := NewStorageService(dir)
		So(storage.EnsureUploadDir(), ShouldBeNil)

		Convey("When a resume is saved", func() {
			filename, path, err := storage.SaveBytes([]byte("%PDF-1.4"), "My CV.PDF", "resume")

			Convey("Then it gets a unique name with a normalized extension", func() {
				So(err, ShouldBeNil)
				So(filename, ShouldStartWith, "resume_")
				So(strings.HasSuffix(filename, ".pdf"), ShouldBeTrue)
				So(path, ShouldEqual, storage.FilePath(filename))

				data, err := os.ReadFile(path)
				So(err, ShouldBeNil)
				So(string(data), ShouldEqual, "%PDF-1.4")
			})

			Convey("Then it can be deleted", func() {
				So(storage.DeleteFile(filename), ShouldBeNil)
				_, err := os.Stat(path)
				So(os.IsNotExist(err), ShouldBeTrue)
			})
		})

		Convey("When the name has an unsupported extension", func() {
			_, _, err := storage.SaveBytes([]byte("hi"), "cv.txt", "resume")
			So(errors.Is(err, ErrUnsupportedFormat), ShouldBeTrue)
		})

		Convey("When a missing file is deleted", func() {
			So(storage.DeleteFile("nope.pdf"), ShouldNotBeNil)
		})
	})
}
