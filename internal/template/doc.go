// Package template resolves configured command templates by substituting
// #{name} placeholders with values supplied on the command line.
package template
