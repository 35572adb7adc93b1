// Package sftpinventory lists files in a remote directory over SSH/SFTP and
// filters them by extension.
//
// This package provides:
//   - A Client that runs a full connect, list, disconnect cycle per call
//   - Password authentication, optionally preceded by a private key
//   - Host key verification by pinned fingerprint or known_hosts (on by default)
//   - A closed set of error kinds: KindInvalidArgument, KindConnection,
//     KindList and KindIllegalState
//   - Optional Prometheus metrics
//
// # Basic Usage
//
//	config := sftpinventory.Config{
//		Host:               "example.com",
//		Port:               22,
//		User:               "deploy",
//		Password:           os.Getenv("SFTP_PASSWORD"),
//		BasePath:           "/incoming",
//		HostKeyFingerprint: "SHA256:...",
//	}
//
//	client, err := sftpinventory.NewClient(config)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	records, err := client.ListFiles(ctx, "csv")
//	switch {
//	case errors.Is(err, sftpinventory.KindConnection):
//		// could not reach or authenticate to the server
//	case errors.Is(err, sftpinventory.KindList):
//		// the directory could not be read
//	}
//
// # Explicit Sessions
//
// Connect and Disconnect manage a single held session. Dial returns a
// session owned by the caller instead:
//
//	session, err := client.Dial(ctx)
//	if err != nil {
//		return err
//	}
//	defer session.Close()
//
//	channel, err := session.OpenDataChannel(ctx)
//	if err != nil {
//		return err
//	}
//	defer channel.Close()
//
//	entries, err := channel.ReadDir(ctx, client.Path())
package sftpinventory
