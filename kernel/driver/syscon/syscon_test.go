package syscon

import "testing"

// stop lets the tests escape the spin that follows the device store.
type stop struct{}

func testCommand(t *testing.T, fn func(), expCmd uint32) {
	t.Helper()

	defer func(orig func(uintptr, uint32)) { write32Fn = orig }(write32Fn)

	var (
		gotAddr uintptr
		gotCmd  uint32
	)
	write32Fn = func(addr uintptr, v uint32) {
		gotAddr, gotCmd = addr, v
		panic(stop{})
	}

	defer func() {
		if _, ok := recover().(stop); !ok {
			t.Fatal("expected the command to reach the device register")
		}
		if gotAddr != baseAddr {
			t.Errorf("expected a write to the syscon register %x; got %x", baseAddr, gotAddr)
		}
		if gotCmd != expCmd {
			t.Errorf("expected command %x; got %x", expCmd, gotCmd)
		}
	}()
	fn()
}

func TestPowerOff(t *testing.T) { testCommand(t, PowerOff, cmdPoweroff) }

func TestReboot(t *testing.T) { testCommand(t, Reboot, cmdReboot) }
