/*
Package ur contains the error types shared by the Universal Robots client packages.

The packages of this module:

	port       TCP connection with line and raw access, used by all protocols
	rollbuf    bounded history of diagnostic messages
	rtde       Real-Time Data Exchange protocol (TCP port 30004)
	dashboard  Dashboard server protocol (TCP port 29999)
	robot      session holding all connections to one controller
*/
package ur
