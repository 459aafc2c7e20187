// Command filebridge serves local directory trees as content repositories.
package main

func main() {
	Execute()
}
