// Package catalog loads authored question stacks from YAML stack files and
// serves them to the submission path through a read-through cache.
//
// A stack file looks like:
//
//	stacks:
//	  - id: capitals
//	    title: European capitals
//	    questions:
//	      - id: capitals-fr
//	        prompt: What is the capital of France?
//	        answers: [Paris]
//	        rule: {mode: normalized}
//	      - id: capitals-color
//	        answers: [colour]
//	        rule: {mode: regex, pattern: "colou?r"}
//
// Every rule is checked when the file is loaded, so a pattern that does not
// compile is reported as a file error rather than at submission time.
package catalog
