// Package press is a client for the EpubPress book publishing service.
//
// A Book is built from pre-fetched sections or from a list of urls, submitted
// with Client.Publish, watched with Client.CheckStatus and finally fetched
// with Client.Download or mailed with Client.EmailDelivery:
//
//	c := press.NewClient()
//	book := c.NewBook(press.Props{Title: "Reading list", URLs: urls})
//	if err := c.Publish(ctx, book); err != nil {
//		return err
//	}
//	status, err := c.CheckStatus(ctx, book)
//
// Every failure is an *Error whose Kind tells preconditions (KindInvalidState)
// apart from missing resources (KindNotFound), other server faults
// (KindServer) and transport problems (KindTransport).
package press
