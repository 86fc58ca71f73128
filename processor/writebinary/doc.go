// Package writebinary provides a processor that extracts a base64 payload embedded in
// an XML document, writes it to a file and replaces the payload with the file's
// absolute path.
//
// # Overview
//
// The Mediator runs one document through a fixed pipeline:
//
//  1. select the binary node with the configured XPath
//  2. decode the node's text as base64
//  3. resolve the target directory and file name (literal or query)
//  4. write the file
//  5. replace the node's content with the absolute path
//
// An empty binary node is a successful no-op. Every failure leaves the document
// untouched and, except for I/O errors after the target was opened, creates no file.
//
// # Targets
//
// The directory and the file name are each either a Literal or a Dynamic query.
// Queries may read the document or the message context:
//
//	settings := writebinary.Settings{
//	    BinaryElementPath: pathquery.MustCompile("//image", nil),
//	    TargetDirectory:   writebinary.Literal("/var/spool/images"),
//	    TargetFileName:    writebinary.Dynamic{Query: pathquery.MustCompile("//fileName", nil)},
//	}
//	m, err := writebinary.New(settings, logger)
//	outcome, err := m.Process(ctx, doc, mctx)
//
// With ForceUniqueFileName the message id and an underscore are prepended to the
// resolved file name. With AllowOverwrite set to false an existing file is left in
// place and the document is passed on unchanged.
//
// # Definitions
//
// Settings can also be read from a declarative block in the urn:c360:binfile
// namespace with ParseDefinition, and written back with MarshalDefinition:
//
//	<writeBinaryFile xmlns="urn:c360:binfile">
//	    <binaryElementXPath value="//image"/>
//	    <targetDirectory value="/var/spool/images"/>
//	    <targetFileName expression="//fileName"/>
//	    <allowOverwrite value="false"/>
//	</writeBinaryFile>
//
// # Processor
//
// Processor hosts a Mediator on NATS. Documents received on the input subjects are
// rewritten and published to every output subject; written documents carry the
// file path in the Binfile-Path header. Failed documents are logged, counted and
// dropped.
package writebinary
