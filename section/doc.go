// Package section defines the fixed binary layouts of the CASC storage
// files: the two index header generations, the index entry record, the
// encoding file directory structures, and the data-archive span and frame
// headers.
//
// Every layout offers a Parse method that decodes and validates a byte
// slice, and — where fixtures need to be built — a symmetric Bytes method
// that serializes the structure back. Parse methods never retain the input
// slice unless documented otherwise.
package section
