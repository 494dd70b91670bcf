// Package device exposes the record log through file-style handles.
//
// Each handle from Device.Open carries its own position and its own pending
// partial write, which survives across Write calls until a write leaves the
// pending bytes ending in a newline. Reads walk the store from the handle
// position one record at a time and return io.EOF at the end of the store.
//
//	f := dev.Open()
//	defer f.Release()
//	_, _ = f.Write([]byte("hel"))
//	_, _ = f.Write([]byte("lo\n"))         // commits "hello\n"
//	_, _ = f.SeekTo(device.SeekTo{WriteCmd: 0, WriteCmdOffset: 1})
//	b, _ := io.ReadAll(f)                  // "ello\n..."
package device
