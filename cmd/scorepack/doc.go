// Command scorepack converts rendered sheet music into .scorepack containers
// and inspects or edits the containers it produced.
package main
