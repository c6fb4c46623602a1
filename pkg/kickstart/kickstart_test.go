package kickstart_test

import (
	"os"
	"path/filepath"
	"time"

	"github.com/RedHatSatellite/rhel8-kickstart-setup/internal/utils"
	"github.com/RedHatSatellite/rhel8-kickstart-setup/pkg/iso"
	"github.com/RedHatSatellite/rhel8-kickstart-setup/pkg/kickstart"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gopkg.in/ini.v1"
)

const sampleTreeinfo = `[general]
arch = x86_64
name = Red Hat Enterprise Linux 8.0.0
packagedir =
platforms = x86_64,xen
repository = .
variant = BaseOS
variants = AppStream,BaseOS

[checksums]
images/boot.iso = sha256:eew8eisheameluuwith1aiLioboh1oht

[images-x86_64]
boot.iso = images/boot.iso

[media]
discnum = 1
totaldiscs = 1

[stage2]
mainimage = images/install.img

[tree]
arch = x86_64
platforms = x86_64,xen
variants = AppStream,BaseOS

[variant-AppStream]
id = AppStream
packages = AppStream/Packages
repository = AppStream

[variant-BaseOS]
id = BaseOS
packages = BaseOS/Packages
repository = BaseOS
`

// makeImageRoot lays out the top level of a RHEL-8 installation image.
func makeImageRoot(root string) {
	for _, dir := range []string{
		filepath.Join(root, "AppStream", "Packages"),
		filepath.Join(root, "AppStream", "repodata"),
		filepath.Join(root, "BaseOS", "Packages"),
		filepath.Join(root, "isolinux"),
	} {
		Expect(os.MkdirAll(dir, os.ModePerm)).ToNot(HaveOccurred())
	}
	files := map[string]string{
		filepath.Join(root, "AppStream", "Packages", "app.rpm"):      "rpm",
		filepath.Join(root, "AppStream", "repodata", "repomd.xml"):   "<repomd/>",
		filepath.Join(root, "AppStream", "TRANS.TBL"):                "index",
		filepath.Join(root, "BaseOS", "Packages", "base.rpm"):        "rpm",
		filepath.Join(root, "BaseOS", "TRANS.TBL"):                   "index",
		filepath.Join(root, ".treeinfo"):                             sampleTreeinfo,
		filepath.Join(root, ".discinfo"):                             "1554367044\nRHEL-8.0.0\nx86_64\n",
		filepath.Join(root, "extra_files.json"):                      `{"data": [{"file": "README"}]}`,
		filepath.Join(root, "README"):                                "read me",
		filepath.Join(root, "isolinux", "isolinux.cfg"):              "default vesamenu.c32",
		filepath.Join(root, "media.repo"):                            "[InstallMedia]",
	}
	for path, content := range files {
		Expect(os.WriteFile(path, []byte(content), os.ModePerm)).ToNot(HaveOccurred())
	}
}

type recordingRunner struct {
	commands [][]string
	onMount  func(mountPoint string)
}

func (r *recordingRunner) run(args []string, canFail bool) bool {
	r.commands = append(r.commands, args)
	switch args[0] {
	case "mount":
		if r.onMount != nil {
			r.onMount(args[len(args)-1])
		}
	case "umount":
		// A successful umount leaves the mountpoint empty again.
		entries, err := os.ReadDir(args[1])
		if err == nil {
			for _, entry := range entries {
				_ = os.RemoveAll(filepath.Join(args[1], entry.Name()))
			}
		}
	}
	return true
}

var _ = Describe("kickstart tree setup", func() {
	var tmpDir, destDir string

	BeforeEach(func() {
		utils.SetLogger()
		var err error
		tmpDir, err = os.MkdirTemp("", "")
		Expect(err).ToNot(HaveOccurred())
		destDir = filepath.Join(tmpDir, "out")
		DeferCleanup(func() { _ = os.RemoveAll(tmpDir) })
	})

	Context("destination validation", func() {
		It("rejects an existing destination before any mount happens", func() {
			Expect(os.MkdirAll(destDir, os.ModePerm)).ToNot(HaveOccurred())

			runner := &recordingRunner{}
			s := kickstart.New("/tmp/some.iso", destDir)
			s.Mounter = &iso.Mounter{Run: runner.run, DelayUnit: time.Millisecond}
			s.Runner = runner.run

			err := s.Run()
			Expect(err).To(MatchError(ContainSubstring("already exists")))
			Expect(runner.commands).To(BeEmpty())
		})
	})

	Context("Populate", func() {
		var imageRoot string

		BeforeEach(func() {
			imageRoot = filepath.Join(tmpDir, "mnt")
			Expect(os.MkdirAll(imageRoot, os.ModePerm)).ToNot(HaveOccurred())
			makeImageRoot(imageRoot)
		})

		It("builds both variant trees with metadata and extra files", func() {
			s := kickstart.New("/tmp/some.iso", destDir)
			Expect(s.Populate(imageRoot)).ToNot(HaveOccurred())

			for _, variant := range []string{"baseos", "appstream"} {
				for _, fname := range []string{"treeinfo", "discinfo", "README", "extra_files.json"} {
					_, err := os.Stat(filepath.Join(destDir, variant, "kickstart", fname))
					Expect(err).ToNot(HaveOccurred(), "%s missing in %s", fname, variant)
				}
			}
			_, err := os.Stat(filepath.Join(destDir, "baseos", "kickstart", "Packages", "base.rpm"))
			Expect(err).ToNot(HaveOccurred())
			_, err = os.Stat(filepath.Join(destDir, "appstream", "kickstart", "Packages", "app.rpm"))
			Expect(err).ToNot(HaveOccurred())
		})

		It("sweeps the boot files into BaseOS only", func() {
			s := kickstart.New("/tmp/some.iso", destDir)
			Expect(s.Populate(imageRoot)).ToNot(HaveOccurred())

			_, err := os.Stat(filepath.Join(destDir, "baseos", "kickstart", "isolinux", "isolinux.cfg"))
			Expect(err).ToNot(HaveOccurred())
			_, err = os.Stat(filepath.Join(destDir, "appstream", "kickstart", "isolinux"))
			Expect(os.IsNotExist(err)).To(BeTrue())
			_, err = os.Stat(filepath.Join(destDir, "baseos", "kickstart", "media.repo"))
			Expect(os.IsNotExist(err)).To(BeTrue())
		})

		It("leaves TRANS.TBL behind everywhere", func() {
			s := kickstart.New("/tmp/some.iso", destDir)
			Expect(s.Populate(imageRoot)).ToNot(HaveOccurred())

			for _, variant := range []string{"baseos", "appstream"} {
				_, err := os.Stat(filepath.Join(destDir, variant, "kickstart", "TRANS.TBL"))
				Expect(os.IsNotExist(err)).To(BeTrue())
			}
		})
	})

	Context("Run", func() {
		It("produces self-consistent variant trees end to end", func() {
			runner := &recordingRunner{onMount: makeImageRoot}
			s := kickstart.New("/tmp/some.iso", destDir)
			s.Mounter = &iso.Mounter{Run: runner.run, DelayUnit: time.Millisecond}
			s.Runner = runner.run

			Expect(s.Run()).ToNot(HaveOccurred())

			ti, err := ini.Load(filepath.Join(destDir, "baseos", "kickstart", "treeinfo"))
			Expect(err).ToNot(HaveOccurred())
			Expect(ti.SectionStrings()).ToNot(ContainElement("variant-AppStream"))
			Expect(ti.Section("general").Key("repository").String()).To(Equal("."))

			ti, err = ini.Load(filepath.Join(destDir, "appstream", "kickstart", "treeinfo"))
			Expect(err).ToNot(HaveOccurred())
			Expect(ti.SectionStrings()).ToNot(ContainElement("variant-BaseOS"))
			Expect(ti.SectionStrings()).ToNot(ContainElement("images-x86_64"))
			Expect(ti.Section("general").Key("platforms").String()).To(Equal("x86_64"))

			last := runner.commands[len(runner.commands)-1]
			Expect(last).To(Equal([]string{"chmod", "u+w", "-R", destDir}))
		})
	})
})
