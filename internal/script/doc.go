// Package script renders server launch scripts.
//
// Supported flavors:
//   - Shell (start.sh, executable)
//   - Batch (start.bat, CRLF line endings)
//
// Both change into the script's own directory first and run the server
// launcher jar by relative path with the configured JVM arguments:
//
//	creator := script.NewCreator(script.Batch, "-Xmx2G")
//	content := creator.Render("quilt-server-launch.jar")
//	os.WriteFile(script.Batch.FileName(), []byte(content), script.Batch.Mode())
package script
