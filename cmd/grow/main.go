// Grow plays and grows branching text adventures.
// Usage: grow [flags] [adventure.grow|adventure.lua]
package main

func main() {
	Execute()
}
