package cmds

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/gcmem/gcmem/cmd/gcmem/cmds/helphelpers"
	"github.com/gcmem/gcmem/pkg/config"
	"github.com/gcmem/gcmem/pkg/dolphin"
	"github.com/gcmem/gcmem/pkg/logflags"
	"github.com/gcmem/gcmem/pkg/version"
)

var (
	// log is whether to log debug statements.
	log bool
	// logOutput is a comma separated list of components that should produce debug output.
	logOutput string
	// logDest is the file path or file descriptor where logs should go.
	logDest string
	// pollInterval is how often discovery retries while waiting for the emulator.
	pollInterval time.Duration
	// width is the size in bytes of the value printed by 'read'.
	width int
	// asFloat makes 'read' interpret the value as an IEEE-754 single.
	asFloat bool

	// rootCommand is the root of the command tree.
	rootCommand *cobra.Command

	conf *config.Config
)

const gcmemCommandLongDesc = `gcmem reads the emulated GameCube RAM of a running dolphin-emu process.

It locates the emulator in the process list, finds the shared memory mapping
that backs the console's main RAM and copies bytes out of it live, without
attaching a debugger or pausing emulation. Reading another process' memory
requires CAP_SYS_PTRACE or running as the same user with a permissive
ptrace_scope.`

// New returns an initialized command tree.
func New() *cobra.Command {
	conf = config.LoadConfig()

	rootCommand = &cobra.Command{
		Use:   "gcmem",
		Short: "gcmem is a live memory inspector for the Dolphin GameCube emulator.",
		Long:  gcmemCommandLongDesc,
	}

	rootCommand.PersistentFlags().BoolVarP(&log, "log", "", false, "Enable debug logging.")
	rootCommand.PersistentFlags().StringVarP(&logOutput, "log-output", "", "", "Comma separated list of components that should produce debug output (dolphin,mem).")
	rootCommand.PersistentFlags().StringVarP(&logDest, "log-dest", "", "", "Writes logs to the specified file or file descriptor.")
	rootCommand.PersistentFlags().DurationVar(&pollInterval, "poll-interval", 500*time.Millisecond, "How often to re-scan the process list while waiting for the emulator.")

	attachCommand := &cobra.Command{
		Use:   "attach",
		Short: "Wait for a running emulator and report its RAM mapping.",
		Long: `Waits for a dolphin-emu process to appear, locates the mapping that backs
the emulated RAM and prints the target pid, mapping base and size. Blocks
until an emulator shows up.`,
		PreRunE: setupLogging,
		RunE: func(cmd *cobra.Command, args []string) error {
			sess := dolphin.New(coreConfig())
			defer sess.Close()
			if err := discover(sess); err != nil {
				return err
			}
			fmt.Printf("pid:\t%d\n", sess.Pid())
			fmt.Printf("base:\t%#x\n", sess.GamecubeRAMOffset())
			fmt.Printf("size:\t%#x\n", sess.GamecubeRAMSize())
			return nil
		},
	}
	rootCommand.AddCommand(attachCommand)

	readCommand := &cobra.Command{
		Use:   "read <address>",
		Short: "Read one value from emulated RAM.",
		Long: `Reads a single value at the given emulated address (hex, e.g. 0x80001800)
and prints it. Addresses with and without the high mirror bit set reach the
same byte.`,
		Args:    cobra.ExactArgs(1),
		PreRunE: setupLogging,
		RunE:    readCmd,
	}
	readCommand.Flags().IntVar(&width, "width", 4, "Value size in bytes: 1, 2 or 4.")
	readCommand.Flags().BoolVar(&asFloat, "float", false, "Interpret the 4 byte value as an IEEE-754 single.")
	rootCommand.AddCommand(readCommand)

	watchCommand := &cobra.Command{
		Use:   "watch <address>",
		Short: "Poll a 32 bit value and print it whenever it changes.",
		Long: `Polls the 32 bit value at the given emulated address and prints every
change. If the emulator exits, gcmem waits for a new one and resumes.`,
		Args:    cobra.ExactArgs(1),
		PreRunE: setupLogging,
		RunE:    watchCmd,
	}
	rootCommand.AddCommand(watchCommand)

	versionCommand := &cobra.Command{
		Use:   "version",
		Short: "Prints version.",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("gcmem %s\n%s\n", version.GcmemVersion, version.BuildInfo())
		},
	}
	rootCommand.AddCommand(versionCommand)

	rootCommand.SetHelpFunc(func(cmd *cobra.Command, args []string) {
		helphelpers.Prepare(cmd)
		cmd.Root().UsageFunc()(cmd)
	})

	return rootCommand
}

func setupLogging(cmd *cobra.Command, args []string) error {
	return logflags.Setup(log, logOutput, logDest)
}

func coreConfig() *dolphin.Config {
	return &dolphin.Config{
		TargetNames:  conf.TargetNames,
		BackingFiles: conf.BackingFiles,
	}
}

// discover runs the full discovery cycle: wait for an emulator process,
// give it time to map the RAM backing file, then scan its memory map. It
// blocks until both steps succeed or procfs turns out to be unusable.
func discover(sess *dolphin.Session) error {
	if !dolphin.HasPermissions() {
		logflags.DolphinLogger().Warnf("could not raise CAP_SYS_PTRACE, reads may be refused")
	}
	for {
		ok, err := sess.FindProcess()
		if err != nil {
			return err
		}
		if ok {
			break
		}
		time.Sleep(pollInterval)
	}
	// The RAM backing file is mapped a moment after the process appears;
	// scanning straight away would miss it.
	time.Sleep(conf.SettleDelay())
	for !sess.FindGamecubeRAMOffset() {
		if !sess.IsProcessActive() {
			// Target died between process and region discovery.
			sess.Close()
			return discover(sess)
		}
		time.Sleep(pollInterval)
	}
	return nil
}

func parseAddr(arg string) (uint64, error) {
	s := strings.TrimPrefix(strings.ToLower(arg), "0x")
	addr, err := strconv.ParseUint(s, 16, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid address %q: %v", arg, err)
	}
	return addr, nil
}

func readCmd(cmd *cobra.Command, args []string) error {
	addr, err := parseAddr(args[0])
	if err != nil {
		return err
	}
	if asFloat {
		width = 4
	}
	sess := dolphin.New(coreConfig())
	defer sess.Close()
	if err := discover(sess); err != nil {
		return err
	}
	var out string
	switch width {
	case 1:
		out = fmt.Sprintf("%#02x", sess.ReadUint8(addr))
	case 2:
		out = fmt.Sprintf("%#04x", sess.ReadUint16(addr))
	case 4:
		if asFloat {
			out = fmt.Sprintf("%g", sess.ReadFloat32(addr))
		} else {
			out = fmt.Sprintf("%#08x", sess.ReadUint32(addr))
		}
	default:
		return errors.New("width must be 1, 2 or 4")
	}
	if !sess.HasProcess() {
		return errors.New("read failed, emulator exited or remapped its memory")
	}
	fmt.Println(out)
	return nil
}

func watchCmd(cmd *cobra.Command, args []string) error {
	addr, err := parseAddr(args[0])
	if err != nil {
		return err
	}
	sess := dolphin.New(coreConfig())
	defer sess.Close()

	var last uint32
	have := false
	for {
		if !sess.HasGamecubeRAMOffset() {
			if err := discover(sess); err != nil {
				return err
			}
			fmt.Fprintf(os.Stderr, "watching pid %d\n", sess.Pid())
			have = false
		}
		v := sess.ReadUint32(addr)
		if !sess.HasProcess() {
			// Read failure tore the session down; rediscover.
			continue
		}
		if !have || v != last {
			fmt.Printf("%#08x\n", v)
			last, have = v, true
		}
		time.Sleep(pollInterval)
	}
}
