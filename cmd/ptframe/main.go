// Command ptframe evaluates parallel transport frames along curves described
// by rig files, either once from the command line or as an HTTP service.
package main

func main() {
	Execute()
}
