/*
FindGreetings Obfuscator (Entry Point)

This tool mirrors a project tree into an obfuscated copy: binary media is
inlined into the files that reference it as data URIs, every remaining file
is base64-wrapped in a self-decoding template, and the result is zipped.
*/
package main

import (
	"github.com/Patrickazonzo/findgreetings/cmd/findgreetings-obfuscator/cmd"
)

// main is the entry point of the application.
func main() {
	cmd.Execute()
}
