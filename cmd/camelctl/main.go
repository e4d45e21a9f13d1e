// Command camelctl inspects size classes and exercises the allocator.
package main

func main() {
	execute()
}
