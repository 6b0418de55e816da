// Package binary downloads and installs the ShellCheck executable.
//
// # Pipeline
//
// An Installer runs one linear sequence per Install call:
//
//  1. Validate: the destination's parent directory must exist and be writable.
//  2. Stage: a private working directory is created under the temp base.
//  3. Resolve: the download URL is taken from the request or built from the
//     release table via ResolveArchitecture.
//  4. Download: the archive is fetched into the working directory.
//  5. Verify: when a SHA-256 digest is given, the archive must match it.
//  6. Extract: only the shellcheck executable is unpacked.
//  7. Chmod: the configured mode is applied.
//  8. Move: the executable is renamed onto the destination.
//
// The working directory is removed when Install returns, whatever the outcome.
// Nothing is written to the destination before step 8.
//
// # Errors
//
// Failures are returned as *InstallError. The error matches both the sentinel
// for its phase and the underlying cause:
//
//	_, err := inst.Install(ctx, binary.Request{Destination: "bin/shellcheck"})
//	if errors.Is(err, binary.ErrUnsupportedArchitecture) {
//	    // no release for this host
//	}
//
// # Usage
//
//	inst, err := binary.NewInstaller(binary.Options{Logger: log})
//	if err != nil {
//	    return err
//	}
//	res, err := inst.Install(ctx, binary.Request{
//	    Destination: "/usr/local/bin/shellcheck",
//	})
package binary
