// Package copier implements the tree-copy engine used to stage a working
// copy of a collection directory before building or testing it.
//
// The engine walks a source tree depth-first and reproduces every entry in a
// destination tree. Symlinks are classified against the source root: links
// whose target stays inside the tree are recreated as links, links pointing
// outside the tree are materialized as copied content. Entries matching the
// policy's exclusion patterns are skipped, but only at the top level of the
// tree. Metadata preservation (permissions, timestamps) is best-effort and
// never fails a copy.
//
// Two copier variants exist:
//
//   - Copier copies the whole tree according to a Policy, optionally
//     carrying the version-control metadata directory along.
//   - GitCopier copies only the files git knows about (tracked plus
//     untracked-but-not-ignored), which is what collection builds want when
//     the source tree doubles as a development checkout.
package copier
