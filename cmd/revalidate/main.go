// Command revalidate re-runs validation over stored or local practices.
package main

func main() {
	Execute()
}
