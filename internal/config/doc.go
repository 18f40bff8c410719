// Package config loads the h5bank configuration.
//
// The configuration makes the flash layout explicit: the bank base
// addresses that determine the bank-2 rebase offset, the sections copied
// into bank 2 and the section types allowed, the external tools used and
// the linker script patched by the NOLOAD tool. Defaults for the STM32H573
// secure image are embedded; a user file only needs the keys it changes:
//
//	banks:
//	  bank2_base: 0x0C080000
//	duplicate:
//	  extractor: objcopy
//
// # Configuration File Location
//
//   - Linux: $XDG_CONFIG_HOME/h5bank/config.yaml or $HOME/.config/h5bank/config.yaml
//   - macOS: $HOME/.config/h5bank/config.yaml
//   - Windows: %LOCALAPPDATA%\h5bank\config.yaml
//
// Commands take --config to read another file; flags override both.
package config
