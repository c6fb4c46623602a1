package iso

import (
	"fmt"
	"os"
	"time"

	"github.com/RedHatSatellite/rhel8-kickstart-setup/internal/constants"
	"github.com/RedHatSatellite/rhel8-kickstart-setup/internal/utils"
	"github.com/avast/retry-go"
	"github.com/hashicorp/go-multierror"
	"github.com/moby/sys/mountinfo"
)

const umountAttempts = 5

// Mounter loop-mounts an image into a temporary directory for the duration
// of a scoped callback and always tears the mount down afterwards.
type Mounter struct {
	// Run executes external commands, defaults to utils.Run.
	Run utils.RunFunc
	// DelayUnit scales the backoff between unmount attempts.
	DelayUnit time.Duration
}

func NewMounter() *Mounter {
	return &Mounter{
		Run:       utils.Run,
		DelayUnit: time.Second,
	}
}

// WithMounted mounts image read-only over a fresh temporary directory and
// calls fn with the mountpoint. The unmount and the mountpoint removal run
// on every exit path; an error removing the mountpoint is joined to
// whatever fn returned.
func (m *Mounter) WithMounted(image string, fn func(mountDir string) error) (err error) {
	mountPoint, err := os.MkdirTemp("", constants.MountPattern)
	if err != nil {
		return err
	}

	m.Run([]string{"mount", "-o", "loop", image, mountPoint}, false)
	if mounted, infoErr := mountinfo.Mounted(mountPoint); infoErr == nil {
		utils.Log.Debug().Str("image", image).Str("mountpoint", mountPoint).Bool("mounted", mounted).Msg("Image mounted")
	}

	defer func() {
		// The image may still be busy right after the copies, a short
		// wait between attempts usually clears it.
		umountErr := retry.Do(
			func() error {
				if !m.Run([]string{"umount", mountPoint}, true) {
					return fmt.Errorf("umount %s failed", mountPoint)
				}
				return nil
			},
			retry.Attempts(umountAttempts),
			retry.DelayType(func(n uint, _ error, _ *retry.Config) time.Duration {
				return time.Duration(n) * m.DelayUnit
			}),
			retry.LastErrorOnly(true),
		)
		if umountErr != nil {
			utils.Log.Debug().Err(umountErr).Str("mountpoint", mountPoint).Msg("Unmount attempts exhausted")
		}
		// Removal fails loudly if the mount is still active.
		if rmErr := os.Remove(mountPoint); rmErr != nil {
			err = multierror.Append(err, rmErr)
		}
	}()

	return fn(mountPoint)
}
